package quire

import "github.com/aretw0/introspection"

// AppState exposes internal state for observability.
type AppState struct {
	Path       string `json:"path,omitempty"`
	Store      any    `json:"store,omitempty"`
	StoreType  string `json:"store_type"`
	Notes      any    `json:"notes"`
	Tasks      any    `json:"tasks"`
	Categories int    `json:"categories"`
	Calendar   string `json:"calendar"`
	Sort       string `json:"sort"`
	Language   string `json:"language"`
}

// State implements introspection.Introspectable.
func (a *App) State() any {
	state := AppState{
		Path:       a.path,
		StoreType:  "store",
		Notes:      a.Notes.State(),
		Tasks:      a.Tasks.State(),
		Categories: len(a.Categories.List()),
		Calendar:   a.Calendar.State().String(),
		Sort:       string(a.Sort),
		Language:   a.View.Tag.String(),
	}
	if intro, ok := a.Store.(introspection.Introspectable); ok {
		state.Store = intro.State()
	}
	if comp, ok := a.Store.(introspection.Component); ok {
		state.StoreType = comp.ComponentType()
	}
	return state
}

// ComponentType implements introspection.Component.
func (a *App) ComponentType() string {
	return "app"
}

var _ introspection.Introspectable = (*App)(nil)
var _ introspection.Component = (*App)(nil)
