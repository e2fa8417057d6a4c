package planar

import (
	"fmt"

	"github.com/kpcee/deadbeef-silence-remover/pkg/audio"
)

// Deinterleave splits the first len(output) channels of the interleaved
// frames into per-channel planes. Each plane is (re)allocated to the frame
// count when it is too short.
func Deinterleave(frames *audio.Frames, output [][]float32) ([][]float32, error) {
	if len(output) > int(frames.Channels) {
		return nil, fmt.Errorf("requested %d channels, but the input has only %d", len(output), frames.Channels)
	}

	samplesPerChan := frames.FrameCount()
	stride := int(frames.Channels)
	for ch := range output {
		if cap(output[ch]) < samplesPerChan {
			output[ch] = make([]float32, samplesPerChan)
		}
		plane := output[ch][:samplesPerChan]
		for samplePos := 0; samplePos < samplesPerChan; samplePos++ {
			plane[samplePos] = frames.Data[samplePos*stride+ch]
		}
		output[ch] = plane
	}

	return output, nil
}
