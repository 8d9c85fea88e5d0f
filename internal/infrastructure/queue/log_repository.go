package queue

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/99minutos/admin-console/internal/core/domain"
	"github.com/99minutos/admin-console/internal/core/ports"
)

const defaultRecentEvents = 256

// LogRepository writes the audit trail to the log and keeps the most recent
// events in memory so the activity feed works without MongoDB. Nothing
// survives a restart.
type LogRepository struct {
	log zerolog.Logger

	mu     sync.Mutex
	recent []domain.SecurityEvent
	next   int
	full   bool
}

var _ ports.SecurityEventRepository = (*LogRepository)(nil)

// NewLogRepository keeps up to capacity events; zero means 256.
func NewLogRepository(capacity int, log zerolog.Logger) *LogRepository {
	if capacity <= 0 {
		capacity = defaultRecentEvents
	}
	return &LogRepository{
		log:    log.With().Str("component", "audit").Logger(),
		recent: make([]domain.SecurityEvent, capacity),
	}
}

func (r *LogRepository) InsertEvent(_ context.Context, event *domain.SecurityEvent) error {
	r.log.Info().
		Str("event_id", event.ID).
		Str("type", string(event.Type)).
		Str("username", event.Username).
		Str("role", string(event.Role)).
		Str("path", event.Path).
		Str("trigger", event.Trigger).
		Str("reason", event.Reason).
		Time("timestamp", event.Timestamp).
		Msg("security event")

	r.mu.Lock()
	defer r.mu.Unlock()
	r.recent[r.next] = *event
	r.next = (r.next + 1) % len(r.recent)
	if r.next == 0 {
		r.full = true
	}
	return nil
}

// ListByUsername returns the newest retained events of username, at most limit.
func (r *LogRepository) ListByUsername(_ context.Context, username string, limit int64) ([]domain.SecurityEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := r.next
	if r.full {
		n = len(r.recent)
	}
	out := []domain.SecurityEvent{}
	for i := 1; i <= n && int64(len(out)) < limit; i++ {
		ev := r.recent[(r.next-i+len(r.recent))%len(r.recent)]
		if ev.Username == username {
			out = append(out, ev)
		}
	}
	return out, nil
}
