package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/jfreymuth/oggvorbis"
	"github.com/kpcee/deadbeef-silence-remover/pkg/audio"
	"github.com/mjibson/go-dsp/wav"
	"github.com/xaionaro-go/datacounter"
)

type Track struct {
	Name   string
	Frames *audio.Frames
}

func NewTrack(name string, frames *audio.Frames) *Track {
	return &Track{
		Name:   name,
		Frames: frames,
	}
}

// RawFormat describes headerless PCM files.
type RawFormat struct {
	PCMFormat  audio.PCMFormat
	Channels   audio.Channel
	SampleRate audio.SampleRate
}

var DefaultRawFormat = RawFormat{
	PCMFormat:  audio.PCMFormatFloat32LE,
	Channels:   2,
	SampleRate: 48000,
}

// LoadTrack decodes the whole file into memory. The decoder is chosen by
// the file extension: ".ogg"/".oga" are Ogg Vorbis, ".wav" is WAV,
// anything else is raw PCM of the given format.
func LoadTrack(
	ctx context.Context,
	path string,
	rawFormat RawFormat,
) (_ret *Track, _err error) {
	logger.Tracef(ctx, "LoadTrack(%s)", path)
	defer func() { logger.Tracef(ctx, "/LoadTrack(%s): %v", path, _err) }()

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open '%s': %w", path, err)
	}
	defer f.Close()

	rc := datacounter.NewReaderCounter(f)
	frames, err := DecodeTrack(filepath.Ext(path), rc, rawFormat)
	if err != nil {
		return nil, fmt.Errorf("unable to decode '%s': %w", path, err)
	}
	logger.Debugf(ctx, "loaded '%s': %d bytes, %d channels, %d Hz, %v", path, rc.Count(), frames.Channels, frames.SampleRate, frames.Duration())

	return NewTrack(filepath.Base(path), frames), nil
}

func DecodeTrack(
	ext string,
	r io.Reader,
	rawFormat RawFormat,
) (*audio.Frames, error) {
	switch strings.ToLower(ext) {
	case ".ogg", ".oga":
		return decodeVorbis(r)
	case ".wav":
		return decodeWAV(r)
	default:
		raw, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("unable to read: %w", err)
		}
		return audio.DecodePCM(rawFormat.PCMFormat, rawFormat.Channels, rawFormat.SampleRate, raw)
	}
}

func decodeVorbis(r io.Reader) (*audio.Frames, error) {
	data, format, err := oggvorbis.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("unable to decode vorbis: %w", err)
	}
	if format.Channels <= 0 {
		return nil, fmt.Errorf("invalid amount of channels: %d", format.Channels)
	}
	return audio.NewFrames(audio.Channel(format.Channels), audio.SampleRate(format.SampleRate), data), nil
}

// wavTailSamples bounds the samples wav.Wav.Samples may miss: it is
// rounded down to a multiple of 8.
const wavTailSamples = 8

func decodeWAV(r io.Reader) (*audio.Frames, error) {
	w, err := wav.New(r)
	if err != nil {
		return nil, fmt.Errorf("unable to parse the WAV header: %w", err)
	}
	if w.NumChannels == 0 {
		return nil, fmt.Errorf("the WAV file has no channels")
	}

	var data []float32
	appendSamples := func(n int) error {
		samples, err := w.ReadSamples(n)
		if err != nil {
			return err
		}
		// wav.ReadFloats maps integers to [0, 1], but silence has to be 0
		switch samples := samples.(type) {
		case []uint8:
			for _, v := range samples {
				data = append(data, (float32(v)-128)/128)
			}
		case []int16:
			for _, v := range samples {
				data = append(data, float32(v)/32768)
			}
		case []float32:
			data = append(data, samples...)
		default:
			return fmt.Errorf("unexpected sample type %T", samples)
		}
		return nil
	}

	data = make([]float32, 0, w.Samples+wavTailSamples)
	if err := appendSamples(w.Samples); err != nil {
		return nil, fmt.Errorf("unable to read %d samples: %w", w.Samples, err)
	}
	for range wavTailSamples {
		err := appendSamples(1)
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("unable to read the trailing samples: %w", err)
		}
	}

	channels := int(w.NumChannels)
	data = data[:len(data)/channels*channels]
	return audio.NewFrames(audio.Channel(channels), audio.SampleRate(w.SampleRate), data), nil
}
