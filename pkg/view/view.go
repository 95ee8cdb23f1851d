// Package view derives the display order of notes. It never mutates its input
// and keeps no state between calls.
package view

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/aretw0/quire/pkg/core"
)

// SortMode selects the display order.
type SortMode string

const (
	DateDesc  SortMode = "DATE_DESC"
	DateAsc   SortMode = "DATE_ASC"
	TitleAsc  SortMode = "TITLE_ASC"
	TitleDesc SortMode = "TITLE_DESC"
	Category  SortMode = "CATEGORY"
	Favorite  SortMode = "FAVORITE"
)

// SortModes lists every mode in menu order.
var SortModes = []SortMode{DateDesc, DateAsc, TitleAsc, TitleDesc, Category, Favorite}

// ErrUnknownSortMode is returned by ParseSortMode.
var ErrUnknownSortMode = errors.New("unknown sort mode")

// ParseSortMode accepts mode names in any case, with '-' or '_'.
func ParseSortMode(s string) (SortMode, error) {
	mode := SortMode(strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(s)), "-", "_"))
	if slices.Contains(SortModes, mode) {
		return mode, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSortMode, s)
}

// Engine derives views with locale-aware title and category comparison.
type Engine struct {
	Tag language.Tag
}

// NewEngine returns an engine for the BCP 47 language tag lang.
// An empty or unparseable tag falls back to the root collation.
func NewEngine(lang string) Engine {
	tag, err := language.Parse(lang)
	if err != nil {
		tag = language.Und
	}
	return Engine{Tag: tag}
}

// Derive is Engine.Derive with the root collation.
func Derive(notes []core.Note, query string, mode SortMode) []core.Note {
	return Engine{Tag: language.Und}.Derive(notes, query, mode)
}

// Derive returns a new slice holding the notes whose title contains query,
// compared case-insensitively, ordered by mode. Equal elements keep their
// storage order. An empty mode keeps storage order.
func (e Engine) Derive(notes []core.Note, query string, mode SortMode) []core.Note {
	out := filter(notes, query)

	// A collator holds scratch buffers, so each call builds its own.
	col := collate.New(e.Tag)

	var cmp func(a, b core.Note) int
	switch mode {
	case DateDesc:
		cmp = func(a, b core.Note) int { return b.UpdatedAt.Compare(a.UpdatedAt) }
	case DateAsc:
		cmp = func(a, b core.Note) int { return a.UpdatedAt.Compare(b.UpdatedAt) }
	case TitleAsc:
		cmp = func(a, b core.Note) int { return col.CompareString(a.Title, b.Title) }
	case TitleDesc:
		cmp = func(a, b core.Note) int { return col.CompareString(b.Title, a.Title) }
	case Category:
		cmp = func(a, b core.Note) int { return col.CompareString(a.Category, b.Category) }
	case Favorite:
		cmp = func(a, b core.Note) int {
			if a.IsFavorite != b.IsFavorite {
				if a.IsFavorite {
					return -1
				}
				return 1
			}
			return b.UpdatedAt.Compare(a.UpdatedAt)
		}
	default:
		return out
	}

	slices.SortStableFunc(out, cmp)
	return out
}

func filter(notes []core.Note, query string) []core.Note {
	out := make([]core.Note, 0, len(notes))
	if query == "" {
		for _, n := range notes {
			out = append(out, n.Clone())
		}
		return out
	}

	fold := cases.Fold()
	needle := fold.String(query)
	for _, n := range notes {
		if strings.Contains(fold.String(n.Title), needle) {
			out = append(out, n.Clone())
		}
	}
	return out
}
