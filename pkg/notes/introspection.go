package notes

import "github.com/aretw0/introspection"

// State is the introspection snapshot of a Repository.
type State struct {
	Key      string `json:"key"`
	Count    int    `json:"count"`
	Dirty    bool   `json:"dirty"`
	Persists int    `json:"persists"`
	Failures int    `json:"failures"`
}

// State implements introspection.Introspectable.
func (r *Repository) State() any {
	r.mu.Lock()
	defer r.mu.Unlock()
	return State{
		Key:      r.coll.Key(),
		Count:    len(r.notes),
		Dirty:    r.dirty,
		Persists: r.persists,
		Failures: r.failures,
	}
}

// ComponentType implements introspection.Component.
func (r *Repository) ComponentType() string {
	return "notes"
}

var (
	_ introspection.Introspectable = (*Repository)(nil)
	_ introspection.Component      = (*Repository)(nil)
)
