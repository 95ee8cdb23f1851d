// Package quire is the composition root of a local-first notes and tasks
// engine.
//
// Notes and tasks live in memory, owned by their repositories, and every
// mutation is saved as a full snapshot to a Durable Store: a small key/value
// store with one text value per key (notes, tasks, categories, currentTheme).
// The default store keeps one file per key and replaces it atomically.
//
// Around the repositories sit a pure view engine (search and locale-aware
// sort), a calendar link workflow that mirrors a task into an external
// calendar, and an export/share service.
//
// Usage:
//
//	app, err := quire.Open(ctx, "./data",
//		quire.WithFormat("yaml"),
//		quire.WithLogger(logger),
//	)
//
//	note, err := app.Notes.Create(ctx, core.NoteFields{Title: "Groceries"})
//	for _, n := range app.DerivedNotes("groc", view.DateDesc) {
//		fmt.Println(n.Title)
//	}
//
// Mutations return nil when saved, core.ErrNotFound when the ID is unknown
// (nothing changed) and *core.PersistError when memory changed but the save
// failed. App.Flush retries failed saves.
package quire
