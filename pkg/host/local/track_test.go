package local

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kpcee/deadbeef-silence-remover/pkg/audio"
	"github.com/kpcee/deadbeef-silence-remover/pkg/loudness"
	"github.com/stretchr/testify/require"
)

func wavFile(t *testing.T, channels uint16, sampleRate uint32, samples []int16) []byte {
	t.Helper()
	var data bytes.Buffer
	require.NoError(t, binary.Write(&data, binary.LittleEndian, samples))
	return wavFileRaw(t, channels, sampleRate, 16, data.Bytes())
}

func wavFileRaw(t *testing.T, channels uint16, sampleRate uint32, bitsPerSample uint16, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	write := func(v any) {
		require.NoError(t, binary.Write(&buf, binary.LittleEndian, v))
	}

	blockAlign := channels * bitsPerSample / 8
	buf.WriteString("RIFF")
	write(uint32(4 + 24 + 12 + 8 + len(data)))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	write(uint32(16))
	write(uint16(1)) // PCM
	write(channels)
	write(sampleRate)
	write(sampleRate * uint32(blockAlign))
	write(blockAlign)
	write(bitsPerSample)

	buf.WriteString("LIST")
	write(uint32(4))
	buf.WriteString("INFO")

	buf.WriteString("data")
	write(uint32(len(data)))
	buf.Write(data)
	return buf.Bytes()
}

func TestDecodeTrackWAV(t *testing.T) {
	raw := wavFile(t, 2, 8000, []int16{0, 0, 16384, -16384, -32768, 32767})

	frames, err := DecodeTrack(".WAV", bytes.NewReader(raw), DefaultRawFormat)
	require.NoError(t, err)
	require.Equal(t, audio.Channel(2), frames.Channels)
	require.Equal(t, audio.SampleRate(8000), frames.SampleRate)
	require.Equal(t, 3, frames.FrameCount())
	require.InDeltaSlice(t, []float32{0, 0, 0.5, -0.5, -1, 1}, frames.Data, 1e-4)
}

func TestDecodeTrackWAVLength(t *testing.T) {
	for _, tc := range []struct {
		channels   uint16
		samples    int
		wantFrames int
	}{
		{channels: 1, samples: 1, wantFrames: 1},
		{channels: 1, samples: 9, wantFrames: 9},
		{channels: 1, samples: 15, wantFrames: 15},
		{channels: 1, samples: 16, wantFrames: 16},
		{channels: 2, samples: 7, wantFrames: 3},
		{channels: 2, samples: 10, wantFrames: 5},
		{channels: 2, samples: 1001, wantFrames: 500},
		{channels: 2, samples: 1002, wantFrames: 501},
	} {
		t.Run(fmt.Sprintf("ch%d_samples%d", tc.channels, tc.samples), func(t *testing.T) {
			samples := make([]int16, tc.samples)
			for idx := range samples {
				samples[idx] = int16(idx + 1)
			}

			frames, err := DecodeTrack(".wav", bytes.NewReader(wavFile(t, tc.channels, 1000, samples)), DefaultRawFormat)
			require.NoError(t, err)
			require.Equal(t, tc.wantFrames, frames.FrameCount())
			require.Len(t, frames.Data, tc.wantFrames*int(tc.channels))

			last := tc.wantFrames*int(tc.channels) - 1
			require.InDelta(t, float32(last+1)/32768, frames.Data[last], 1e-7)
		})
	}
}

func TestDecodeTrackWAVOddDataSize(t *testing.T) {
	// s16 stereo with a dangling byte: 3 frames, then half a sample
	data := []byte{0, 0x40, 0, 0xc0, 0, 0, 0, 0, 0xff, 0x7f, 0, 0x80, 0x12}
	frames, err := DecodeTrack(".wav", bytes.NewReader(wavFileRaw(t, 2, 8000, 16, data)), DefaultRawFormat)
	require.NoError(t, err)
	require.Equal(t, 3, frames.FrameCount())
	require.InDeltaSlice(t, []float32{0.5, -0.5, 0, 0, 1, -1}, frames.Data, 1e-4)

	// u8 stereo, 13 samples
	data = []byte{128, 128, 192, 64, 255, 0, 128, 128, 128, 128, 128, 128, 200}
	frames, err = DecodeTrack(".wav", bytes.NewReader(wavFileRaw(t, 2, 8000, 8, data)), DefaultRawFormat)
	require.NoError(t, err)
	require.Equal(t, 6, frames.FrameCount())
	require.InDeltaSlice(t, []float32{0, 0, 0.5, -0.5, 127.0 / 128, -1}, frames.Data[:6], 1e-6)
}

func TestDecodeTrackVorbis(t *testing.T) {
	f, err := os.Open(filepath.Join("testdata", "mono44100.ogg"))
	require.NoError(t, err)
	defer f.Close()

	frames, err := DecodeTrack(".ogg", f, DefaultRawFormat)
	require.NoError(t, err)
	require.Equal(t, audio.Channel(1), frames.Channels)
	require.Equal(t, audio.SampleRate(44100), frames.SampleRate)
	require.Equal(t, 44100, frames.FrameCount())
	require.Equal(t, time.Second, frames.Duration())
	require.Greater(t, loudness.Estimate(frames), 80.0)
}

func TestDecodeTrackRaw(t *testing.T) {
	source := audio.NewFrames(1, 16000, []float32{0, 0.25, -0.25, 1})
	raw, err := audio.EncodePCM(audio.PCMFormatS16LE, source)
	require.NoError(t, err)

	frames, err := DecodeTrack(".pcm", bytes.NewReader(raw), RawFormat{
		PCMFormat:  audio.PCMFormatS16LE,
		Channels:   1,
		SampleRate: 16000,
	})
	require.NoError(t, err)
	require.Equal(t, audio.Channel(1), frames.Channels)
	require.Equal(t, audio.SampleRate(16000), frames.SampleRate)
	require.InDeltaSlice(t, source.Data, frames.Data, 1e-3)
}

func TestDecodeTrackErrors(t *testing.T) {
	for _, ext := range []string{".wav", ".ogg", ".oga"} {
		t.Run(ext, func(t *testing.T) {
			_, err := DecodeTrack(ext, bytes.NewReader([]byte("definitely not audio")), DefaultRawFormat)
			require.Error(t, err)
		})
	}
}

func TestLoadTrack(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	path := filepath.Join(dir, "tone.wav")
	require.NoError(t, os.WriteFile(path, wavFile(t, 1, 1000, make([]int16, 500)), 0o644))

	track, err := LoadTrack(ctx, path, DefaultRawFormat)
	require.NoError(t, err)
	require.Equal(t, "tone.wav", track.Name)
	require.Equal(t, 500, track.Frames.FrameCount())
	require.Equal(t, "500ms", track.Frames.Duration().String())

	_, err = LoadTrack(ctx, filepath.Join(dir, "missing.wav"), DefaultRawFormat)
	require.ErrorIs(t, err, os.ErrNotExist)
}
