package local

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kpcee/deadbeef-silence-remover/pkg/host"
	"github.com/stretchr/testify/require"
)

func TestConfigStore(t *testing.T) {
	ctx := context.Background()
	source := map[string]int{"a": 1}
	s := NewConfigStore(source)
	source["a"] = 2

	require.Equal(t, 1, s.ConfigInt(ctx, "a", 0))
	require.Equal(t, 7, s.ConfigInt(ctx, "b", 7))

	s.Set("b", 3)
	require.Equal(t, 3, s.ConfigInt(ctx, "b", 7))

	s.Replace(map[string]int{"c": 4})
	require.Equal(t, map[string]int{"c": 4}, s.Values())
	require.Equal(t, 0, s.ConfigInt(ctx, "a", 0))

	values := s.Values()
	values["c"] = 5
	require.Equal(t, 4, s.ConfigInt(ctx, "c", 0))

	empty := NewConfigStore(nil)
	empty.Set("d", 1)
	require.Equal(t, 1, empty.ConfigInt(ctx, "d", 0))
}

func TestParseConfig(t *testing.T) {
	values, err := ParseConfig(strings.NewReader("silenceremover.start_threshold: 12\nplayback.loop: 2\n"))
	require.NoError(t, err)
	require.Equal(t, map[string]int{
		"silenceremover.start_threshold": 12,
		host.ConfigKeyLoopMode:           int(host.LoopModeSingle),
	}, values)

	values, err = ParseConfig(strings.NewReader(""))
	require.NoError(t, err)
	require.Empty(t, values)

	_, err = ParseConfig(strings.NewReader("a: [1, 2]\n"))
	require.Error(t, err)
}

func TestConfigWatcher(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "config.yaml")

	var changes []map[string]int
	w := NewConfigWatcher(path, time.Hour, func(_ context.Context, values map[string]int) {
		changes = append(changes, values)
	})

	require.Error(t, w.Check(ctx))

	now := time.Now()
	update := func(content string, mtime time.Time) {
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		require.NoError(t, os.Chtimes(path, mtime, mtime))
	}

	update("a: 1\n", now)
	require.NoError(t, w.Check(ctx))
	require.Equal(t, []map[string]int{{"a": 1}}, changes)

	// unchanged mtime
	require.NoError(t, w.Check(ctx))
	require.Len(t, changes, 1)

	// touched, same content
	update("a: 1\n", now.Add(time.Second))
	require.NoError(t, w.Check(ctx))
	require.Len(t, changes, 1)

	update("a: [\n", now.Add(2*time.Second))
	require.Error(t, w.Check(ctx))
	require.Len(t, changes, 1)

	update("a: 2\n", now.Add(3*time.Second))
	require.NoError(t, w.Check(ctx))
	require.Equal(t, []map[string]int{{"a": 1}, {"a": 2}}, changes)
}

func TestWatchConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("playback.loop: 1\n"), 0o644))

	h := New(Options{}, nil)
	recorder := &recordingPlugin{id: "recorder"}
	require.NoError(t, h.AddPlugin(context.Background(), recorder))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- h.WatchConfigFile(ctx, path, 10*time.Millisecond)
	}()

	require.Eventually(t, func() bool {
		return h.ConfigInt(ctx, host.ConfigKeyLoopMode, 0) == int(host.LoopModeOff)
	}, time.Second, time.Millisecond)
	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
	require.Equal(t, []host.Event{host.EventConfigChanged}, recorder.Events())
}
