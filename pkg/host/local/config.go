package local

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/facebookincubator/go-belt/tool/logger"
	"gopkg.in/yaml.v3"
)

// ConfigStore is a flat key->integer configuration.
type ConfigStore struct {
	locker sync.Mutex
	values map[string]int
}

func NewConfigStore(values map[string]int) *ConfigStore {
	s := &ConfigStore{}
	s.Replace(values)
	return s
}

func (s *ConfigStore) ConfigInt(_ context.Context, key string, defaultValue int) int {
	s.locker.Lock()
	defer s.locker.Unlock()
	if v, ok := s.values[key]; ok {
		return v
	}
	return defaultValue
}

func (s *ConfigStore) Set(key string, value int) {
	s.locker.Lock()
	defer s.locker.Unlock()
	s.values[key] = value
}

// Replace drops all the values and uses the given ones instead.
func (s *ConfigStore) Replace(values map[string]int) {
	m := make(map[string]int, len(values))
	for k, v := range values {
		m[k] = v
	}

	s.locker.Lock()
	defer s.locker.Unlock()
	s.values = m
}

func (s *ConfigStore) Values() map[string]int {
	s.locker.Lock()
	defer s.locker.Unlock()
	m := make(map[string]int, len(s.values))
	for k, v := range s.values {
		m[k] = v
	}
	return m
}

// ParseConfig decodes a YAML document of "key: integer" pairs.
func ParseConfig(r io.Reader) (map[string]int, error) {
	values := map[string]int{}
	if err := yaml.NewDecoder(r).Decode(&values); err != nil && err != io.EOF {
		return nil, fmt.Errorf("unable to decode yaml: %w", err)
	}
	return values, nil
}

func LoadConfigFile(path string) (map[string]int, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read '%s': %w", path, err)
	}
	values, err := ParseConfig(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("unable to parse '%s': %w", path, err)
	}
	return values, nil
}

// ConfigWatcher polls a config file and calls onChange with the new values
// whenever its content changes. Unparsable revisions are skipped.
type ConfigWatcher struct {
	path     string
	interval time.Duration
	onChange func(ctx context.Context, values map[string]int)

	lastMtime time.Time
	lastHash  [sha256.Size]byte
}

func NewConfigWatcher(
	path string,
	interval time.Duration,
	onChange func(ctx context.Context, values map[string]int),
) *ConfigWatcher {
	return &ConfigWatcher{
		path:     path,
		interval: interval,
		onChange: onChange,
	}
}

// Serve blocks until ctx is cancelled. The current file content is
// reported right away.
func (w *ConfigWatcher) Serve(ctx context.Context) error {
	logger.Tracef(ctx, "ConfigWatcher.Serve(%s)", w.path)
	defer logger.Tracef(ctx, "/ConfigWatcher.Serve(%s)", w.path)

	if err := w.Check(ctx); err != nil {
		return err
	}

	t := time.NewTicker(w.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			if err := w.Check(ctx); err != nil {
				logger.Warnf(ctx, "unable to check the config file: %v", err)
			}
		}
	}
}

// Check reloads the file if it was modified since the last check.
func (w *ConfigWatcher) Check(ctx context.Context) error {
	info, err := os.Stat(w.path)
	if err != nil {
		return fmt.Errorf("unable to stat '%s': %w", w.path, err)
	}
	if info.ModTime().Equal(w.lastMtime) {
		return nil
	}

	b, err := os.ReadFile(w.path)
	if err != nil {
		return fmt.Errorf("unable to read '%s': %w", w.path, err)
	}
	w.lastMtime = info.ModTime()

	hash := sha256.Sum256(b)
	if hash == w.lastHash {
		return nil
	}

	values, err := ParseConfig(bytes.NewReader(b))
	if err != nil {
		return fmt.Errorf("unable to parse '%s': %w", w.path, err)
	}
	w.lastHash = hash

	logger.Debugf(ctx, "config '%s' changed: %v", w.path, values)
	w.onChange(ctx, values)
	return nil
}
