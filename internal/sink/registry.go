package sink

import (
	"errors"
	"sort"

	"github.com/google/uuid"
)

// Registry is the table of open file sinks. Whatever is still open when
// the process shuts down gets flushed and closed by CloseAll.
type Registry struct {
	open  map[uuid.UUID]Sink
	order []uuid.UUID
}

func NewRegistry() *Registry {
	return &Registry{open: make(map[uuid.UUID]Sink)}
}

// Add tracks s and returns its key.
func (r *Registry) Add(s Sink) uuid.UUID {
	id := uuid.New()
	r.open[id] = s
	r.order = append(r.order, id)
	return id
}

// Remove forgets id. Unknown keys are ignored.
func (r *Registry) Remove(id uuid.UUID) {
	if _, ok := r.open[id]; !ok {
		return
	}
	delete(r.open, id)
	for i, o := range r.order {
		if o == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// Get returns the sink registered under id.
func (r *Registry) Get(id uuid.UUID) (Sink, bool) {
	s, ok := r.open[id]
	return s, ok
}

// Len returns the number of open sinks.
func (r *Registry) Len() int { return len(r.open) }

// Names lists the names of open sinks, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.open))
	for _, s := range r.open {
		names = append(names, s.Name())
	}
	sort.Strings(names)
	return names
}

// CloseAll closes every open sink in the order they were opened.
func (r *Registry) CloseAll() error {
	pending := append([]uuid.UUID(nil), r.order...)
	var errs []error
	for _, id := range pending {
		if s, ok := r.open[id]; ok {
			if err := s.Close(); err != nil {
				errs = append(errs, err)
			}
			r.Remove(id)
		}
	}
	return errors.Join(errs...)
}
