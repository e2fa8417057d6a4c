package audio

import (
	"time"
)

// Frames is a block of interleaved floating point samples.
type Frames struct {
	Channels   Channel
	SampleRate SampleRate
	Data       []float32
}

func NewFrames(channels Channel, sampleRate SampleRate, data []float32) *Frames {
	return &Frames{
		Channels:   channels,
		SampleRate: sampleRate,
		Data:       data,
	}
}

// FrameCount returns the amount of complete frames, a trailing partial
// frame is ignored.
func (f *Frames) FrameCount() int {
	if f == nil || f.Channels == 0 {
		return 0
	}
	return len(f.Data) / int(f.Channels)
}

func (f *Frames) Duration() time.Duration {
	if f == nil || f.SampleRate == 0 {
		return 0
	}
	return time.Duration(f.FrameCount()) * time.Second / time.Duration(f.SampleRate)
}

// Slice returns frames [start, end) sharing the underlying data. Bounds are
// clamped to the available frames.
func (f *Frames) Slice(start, end int) *Frames {
	count := f.FrameCount()
	if start < 0 {
		start = 0
	}
	if end > count {
		end = count
	}
	if start > end {
		start = end
	}
	ch := int(f.Channels)
	return &Frames{
		Channels:   f.Channels,
		SampleRate: f.SampleRate,
		Data:       f.Data[start*ch : end*ch],
	}
}
