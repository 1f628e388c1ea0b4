package worker

import "sync"

// Registry tracks the set of in-flight render job ids.
type Registry struct {
	mu   sync.Mutex
	jobs map[string]struct{}
}

func NewRegistry() *Registry {
	return &Registry{jobs: make(map[string]struct{})}
}

func (r *Registry) Register(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs[id] = struct{}{}
}

func (r *Registry) Unregister(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.jobs, id)
}

func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.jobs)
}

// Active returns a snapshot of the in-flight job ids.
func (r *Registry) Active() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.jobs))
	for id := range r.jobs {
		ids = append(ids, id)
	}
	return ids
}
