package navigation

import (
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/99minutos/admin-console/internal/core/ports"
)

// Entry is one item of the client's history stack.
type Entry struct {
	ID   string
	Path string
}

// PopListener is called after Back or Forward moved onto entry.
type PopListener func(entry Entry)

// History is the console's navigation stack. Replace and Reload are the only
// ways the session core touches it.
type History struct {
	log zerolog.Logger

	mu        sync.Mutex
	entries   []Entry
	index     int
	reloads   int
	listeners []PopListener
}

var _ ports.Navigator = (*History)(nil)

// NewHistory starts with a single entry at path.
func NewHistory(path string, log zerolog.Logger) *History {
	return &History{
		log:     log.With().Str("component", "history").Logger(),
		entries: []Entry{newEntry(path)},
	}
}

func newEntry(path string) Entry {
	return Entry{ID: uuid.NewString(), Path: path}
}

// Push adds a new entry after the current one, dropping any forward entries.
func (h *History) Push(path string) Entry {
	h.mu.Lock()
	defer h.mu.Unlock()
	e := newEntry(path)
	h.entries = append(h.entries[:h.index+1], e)
	h.index = len(h.entries) - 1
	return e
}

// Replace overwrites the current entry. The entry gets a new id, so a later
// visit to the same path counts as a new navigation attempt.
func (h *History) Replace(path string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries[h.index] = newEntry(path)
	h.log.Debug().Str("path", path).Msg("history entry replaced")
}

// Reload truncates history to one entry at path and counts a full reload.
func (h *History) Reload(path string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = []Entry{newEntry(path)}
	h.index = 0
	h.reloads++
	h.log.Debug().Str("path", path).Msg("history truncated, full reload")
}

// Back moves one entry back. It returns false at the start of history.
func (h *History) Back() (Entry, bool) {
	return h.move(-1)
}

// Forward moves one entry forward. It returns false at the end of history.
func (h *History) Forward() (Entry, bool) {
	return h.move(1)
}

func (h *History) move(delta int) (Entry, bool) {
	h.mu.Lock()
	next := h.index + delta
	if next < 0 || next >= len(h.entries) {
		h.mu.Unlock()
		return Entry{}, false
	}
	h.index = next
	e := h.entries[next]
	listeners := append([]PopListener(nil), h.listeners...)
	h.mu.Unlock()

	for _, fn := range listeners {
		fn(e)
	}
	return e, true
}

// OnPop registers fn for back/forward moves.
func (h *History) OnPop(fn PopListener) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.listeners = append(h.listeners, fn)
}

// Current returns the active entry.
func (h *History) Current() Entry {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.entries[h.index]
}

// Entries returns a copy of the stack.
func (h *History) Entries() []Entry {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Entry(nil), h.entries...)
}

// Len is the number of entries on the stack.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

// Reloads counts full reloads since construction.
func (h *History) Reloads() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.reloads
}
