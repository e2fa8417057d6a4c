package silenceremover

import (
	"context"
	"sync"

	"github.com/kpcee/deadbeef-silence-remover/pkg/audio"
	"github.com/kpcee/deadbeef-silence-remover/pkg/host"
)

type testHost struct {
	locker   sync.Mutex
	percent  float64
	config   map[string]int
	seeks    []float64
	nexts    int
	replays  int
	handlers []host.BufferTickHandler
}

var _ host.Host = (*testHost)(nil)

func newTestHost(config map[string]int) *testHost {
	if config == nil {
		config = map[string]int{}
	}
	return &testHost{config: config}
}

func (h *testHost) PlaybackPercent(context.Context) float64 {
	h.locker.Lock()
	defer h.locker.Unlock()
	return h.percent
}

func (h *testHost) SeekToPercent(_ context.Context, percent float64) {
	h.locker.Lock()
	defer h.locker.Unlock()
	h.seeks = append(h.seeks, percent)
}

func (h *testHost) NextTrack(context.Context) {
	h.locker.Lock()
	defer h.locker.Unlock()
	h.nexts++
}

func (h *testHost) ReplayCurrentTrack(context.Context) {
	h.locker.Lock()
	defer h.locker.Unlock()
	h.replays++
}

func (h *testHost) ConfigInt(_ context.Context, key string, defaultValue int) int {
	h.locker.Lock()
	defer h.locker.Unlock()
	if v, ok := h.config[key]; ok {
		return v
	}
	return defaultValue
}

func (h *testHost) setConfig(key string, value int) {
	h.locker.Lock()
	defer h.locker.Unlock()
	h.config[key] = value
}

func (h *testHost) setPercent(percent float64) {
	h.locker.Lock()
	defer h.locker.Unlock()
	h.percent = percent
}

func (h *testHost) NewMutex() sync.Locker {
	return &sync.Mutex{}
}

func (h *testHost) SubscribeBufferTicks(_ context.Context, handler host.BufferTickHandler) {
	h.locker.Lock()
	defer h.locker.Unlock()
	h.handlers = append(h.handlers, handler)
}

func (h *testHost) UnsubscribeBufferTicks(_ context.Context, handler host.BufferTickHandler) {
	h.locker.Lock()
	defer h.locker.Unlock()
	for idx, cur := range h.handlers {
		if cur == handler {
			h.handlers = append(h.handlers[:idx], h.handlers[idx+1:]...)
			return
		}
	}
}

// tick delivers frames to every subscriber, like a host buffer callback.
func (h *testHost) tick(ctx context.Context, frames *audio.Frames) {
	h.locker.Lock()
	handlers := append([]host.BufferTickHandler{}, h.handlers...)
	h.locker.Unlock()
	for _, handler := range handlers {
		handler.OnBuffer(ctx, frames)
	}
}

func (h *testHost) commands() (seeks []float64, nexts, replays int) {
	h.locker.Lock()
	defer h.locker.Unlock()
	return append([]float64{}, h.seeks...), h.nexts, h.replays
}

func framesOfAmplitude(amplitude float32) *audio.Frames {
	data := make([]float32, 2*512)
	for idx := range data {
		data[idx] = amplitude
	}
	return audio.NewFrames(2, 44100, data)
}
