package quire_test

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/aretw0/quire"
	"github.com/aretw0/quire/pkg/core"
	"github.com/aretw0/quire/pkg/view"
)

// Example_basic creates two notes and lists them most recent first.
func Example_basic() {
	tmpDir, err := os.MkdirTemp("", "quire-example-*")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(tmpDir)

	ctx := context.Background()
	app, err := quire.Open(ctx, tmpDir)
	if err != nil {
		log.Fatal(err)
	}

	if _, err := app.Notes.Create(ctx, core.NoteFields{Title: "Grocery List", Category: "Shopping"}); err != nil {
		log.Fatal(err)
	}
	time.Sleep(time.Millisecond)
	if _, err := app.Notes.Create(ctx, core.NoteFields{Title: "Sprint plan", Category: "Work"}); err != nil {
		log.Fatal(err)
	}

	for _, n := range app.DerivedNotes("", view.DateDesc) {
		fmt.Println(n.Title)
	}
	fmt.Println(len(app.DerivedNotes("grocery", "")))
	// Output:
	// Sprint plan
	// Grocery List
	// 1
}
