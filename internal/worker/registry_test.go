package worker

import (
	"fmt"
	"sort"
	"sync"
	"testing"
)

func TestRegistryRegisterUnregister(t *testing.T) {
	r := NewRegistry()

	r.Register("a")
	r.Register("b")
	if got := r.Count(); got != 2 {
		t.Errorf("Count = %d, want 2", got)
	}

	r.Unregister("a")
	if got := r.Count(); got != 1 {
		t.Errorf("Count = %d, want 1", got)
	}

	// Unregistering an unknown id is a no-op.
	r.Unregister("missing")
	if got := r.Count(); got != 1 {
		t.Errorf("Count = %d, want 1", got)
	}
}

func TestRegistryActive(t *testing.T) {
	r := NewRegistry()
	r.Register("job-2")
	r.Register("job-1")

	ids := r.Active()
	sort.Strings(ids)
	if len(ids) != 2 || ids[0] != "job-1" || ids[1] != "job-2" {
		t.Errorf("Active = %v", ids)
	}
}

func TestRegistryConcurrent(t *testing.T) {
	r := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("job-%d", i)
			r.Register(id)
			r.Count()
			r.Unregister(id)
		}(i)
	}
	wg.Wait()

	if got := r.Count(); got != 0 {
		t.Errorf("Count = %d after all jobs finished, want 0", got)
	}
}
