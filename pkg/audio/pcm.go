package audio

import (
	"fmt"
	"math"
)

// DecodePCM converts interleaved raw PCM samples into Frames.
func DecodePCM(
	format PCMFormat,
	channels Channel,
	sampleRate SampleRate,
	raw []byte,
) (*Frames, error) {
	if channels == 0 {
		return nil, fmt.Errorf("the amount of channels is zero")
	}
	layout, ok := sampleLayouts[format]
	if !ok {
		return nil, fmt.Errorf("unknown format: %v", format)
	}
	sampleSize := layout.Size
	frameSize := sampleSize * int(channels)
	if len(raw)%frameSize != 0 {
		return nil, fmt.Errorf("expected a message length that is a multiple of %d, but received %d", frameSize, len(raw))
	}

	data := make([]float32, len(raw)/sampleSize)
	for idx := range data {
		data[idx] = float32(layout.decode(raw[idx*sampleSize:]))
	}
	return NewFrames(channels, sampleRate, data), nil
}

// EncodePCM is the inverse of DecodePCM. Values outside [-1, 1] are
// saturated for integer formats.
func EncodePCM(format PCMFormat, frames *Frames) ([]byte, error) {
	layout, ok := sampleLayouts[format]
	if !ok {
		return nil, fmt.Errorf("unknown format: %v", format)
	}
	if !layout.Float && layout.Size == 8 {
		// the saturation bound 2^63-1 is not representable in a float64
		return nil, fmt.Errorf("unsupported format: %v", format)
	}
	sampleSize := layout.Size
	out := make([]byte, len(frames.Data)*sampleSize)
	for idx, v := range frames.Data {
		layout.encode(out[idx*sampleSize:], float64(v))
	}
	return out, nil
}

// sampleLayout is how a single sample of a PCMFormat is stored.
type sampleLayout struct {
	Size      int
	BigEndian bool
	Float     bool
	Unsigned  bool
}

var sampleLayouts = map[PCMFormat]sampleLayout{
	PCMFormatU8:        {Size: 1, Unsigned: true},
	PCMFormatS16LE:     {Size: 2},
	PCMFormatS16BE:     {Size: 2, BigEndian: true},
	PCMFormatS24LE:     {Size: 3},
	PCMFormatS24BE:     {Size: 3, BigEndian: true},
	PCMFormatS32LE:     {Size: 4},
	PCMFormatS32BE:     {Size: 4, BigEndian: true},
	PCMFormatS64LE:     {Size: 8},
	PCMFormatS64BE:     {Size: 8, BigEndian: true},
	PCMFormatFloat32LE: {Size: 4, Float: true},
	PCMFormatFloat32BE: {Size: 4, BigEndian: true, Float: true},
	PCMFormatFloat64LE: {Size: 8, Float: true},
	PCMFormatFloat64BE: {Size: 8, BigEndian: true, Float: true},
}

func (l sampleLayout) load(p []byte) uint64 {
	var u uint64
	for idx := 0; idx < l.Size; idx++ {
		shift := idx
		if l.BigEndian {
			shift = l.Size - 1 - idx
		}
		u |= uint64(p[idx]) << (8 * shift)
	}
	return u
}

func (l sampleLayout) store(p []byte, u uint64) {
	for idx := 0; idx < l.Size; idx++ {
		shift := idx
		if l.BigEndian {
			shift = l.Size - 1 - idx
		}
		p[idx] = byte(u >> (8 * shift))
	}
}

// scale is the magnitude of the most negative integer sample.
func (l sampleLayout) scale() float64 {
	return math.Ldexp(1, 8*l.Size-1)
}

func (l sampleLayout) decode(p []byte) float64 {
	u := l.load(p)
	switch {
	case l.Float && l.Size == 4:
		return float64(math.Float32frombits(uint32(u)))
	case l.Float:
		return math.Float64frombits(u)
	case l.Unsigned:
		return (float64(u) - l.scale()) / l.scale()
	}
	unused := uint(64 - 8*l.Size)
	return float64(int64(u<<unused)>>unused) / l.scale()
}

func (l sampleLayout) encode(p []byte, v float64) {
	var u uint64
	switch {
	case l.Float && l.Size == 4:
		u = uint64(math.Float32bits(float32(v)))
	case l.Float:
		u = math.Float64bits(v)
	case l.Unsigned:
		u = uint64(int64(saturate(v, l.scale()) + l.scale()))
	default:
		u = uint64(int64(saturate(v, l.scale())))
	}
	l.store(p, u)
}

func saturate(v float64, scale float64) float64 {
	v = math.Round(v * scale)
	if v > scale-1 {
		return scale - 1
	}
	if v < -scale {
		return -scale
	}
	return v
}
