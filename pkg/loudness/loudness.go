// Package loudness estimates the perceived loudness of a block of PCM
// frames on the 0..100 scale the silence remover thresholds use.
package loudness

import (
	"math"

	"github.com/kpcee/deadbeef-silence-remover/pkg/audio"
	"github.com/kpcee/deadbeef-silence-remover/pkg/audio/planar"
)

const (
	// MaxChannels is the amount of leading channels taken into account.
	MaxChannels = 2

	// FullScale is the loudness of a block with RMS 1.0.
	FullScale = 100
)

// Silence is returned for blocks without measurable energy.
var Silence = math.Inf(-1)

// Estimator computes loudness values. It keeps per-channel scratch
// buffers, so it must not be used concurrently.
type Estimator struct {
	planes [][]float32
}

func NewEstimator() *Estimator {
	return &Estimator{
		planes: make([][]float32, MaxChannels),
	}
}

// Estimate returns 100 + 20*log10(avgRMS), where avgRMS is the average of
// the RMS values of the first MaxChannels channels.
func (e *Estimator) Estimate(frames *audio.Frames) float64 {
	if frames == nil || frames.FrameCount() == 0 {
		return Silence
	}

	channels := min(int(frames.Channels), MaxChannels)
	planes, err := planar.Deinterleave(frames, e.planes[:channels])
	if err != nil {
		return Silence
	}

	var sum float64
	for _, plane := range planes {
		sum += RMS(plane)
	}
	return Decibels(sum / float64(channels))
}

// Estimate is a shortcut for a one-off NewEstimator().Estimate(frames).
func Estimate(frames *audio.Frames) float64 {
	return NewEstimator().Estimate(frames)
}

// RMS returns the root-mean-square amplitude of the samples.
func RMS(samples []float32) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		v := float64(s)
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(samples)))
}

// Decibels maps an RMS amplitude to the loudness scale. Non-positive and
// NaN amplitudes are Silence.
func Decibels(rms float64) float64 {
	if !(rms > 0) {
		return Silence
	}
	return FullScale + 20*math.Log10(rms)
}
