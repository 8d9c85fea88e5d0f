package notify

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/99minutos/admin-console/internal/core/domain"
	"github.com/99minutos/admin-console/internal/core/ports"
)

const defaultCapacity = 32

// Flash queues notices until the next response drains them. When full, the
// oldest notice is dropped.
type Flash struct {
	log zerolog.Logger
	cap int

	mu      sync.Mutex
	pending []domain.Notice
}

var _ ports.Notifier = (*Flash)(nil)

func NewFlash(capacity int, log zerolog.Logger) *Flash {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	return &Flash{
		log: log.With().Str("component", "notify").Logger(),
		cap: capacity,
	}
}

func (f *Flash) Notify(n domain.Notice) {
	f.log.Info().Str("level", string(n.Level)).Msg(n.Message)

	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.pending) == f.cap {
		f.pending = f.pending[1:]
	}
	f.pending = append(f.pending, n)
}

// Drain returns and forgets every queued notice. It never returns nil.
func (f *Flash) Drain() []domain.Notice {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.pending
	f.pending = nil
	if out == nil {
		out = []domain.Notice{}
	}
	return out
}

// Pending reports the queue length.
func (f *Flash) Pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.pending)
}
