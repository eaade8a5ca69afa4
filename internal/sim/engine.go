// Package sim adapts the allocators to a presentation layer: it parses user
// input, applies actions to a selected engine, and turns outcomes and state
// into typed rows and messages. It never performs I/O with the user.
package sim

import (
	"fmt"

	"github.com/garethgeorge/memsim/internal/config"
)

type Mode string

const (
	FirstFit Mode = "first-fit"
	QuickFit Mode = "quick-fit"
)

func Modes() []Mode {
	return []Mode{FirstFit, QuickFit}
}

func ParseMode(s string) (Mode, error) {
	switch s {
	case "first-fit", "firstfit", "ff":
		return FirstFit, nil
	case "quick-fit", "quickfit", "qf":
		return QuickFit, nil
	}
	return "", fmt.Errorf("unknown simulation mode %q (want %q or %q)", s, FirstFit, QuickFit)
}

// Highlight marks a cell for styling. Presentation code picks colors from
// it and never from the cell text.
type Highlight int

const (
	HighlightNone Highlight = iota
	HighlightOccupied
	HighlightFree
	HighlightRejected
	// HighlightExhausted marks a size class with no free blocks left.
	HighlightExhausted
)

type Cell struct {
	Text      string
	Highlight Highlight
}

type Row []Cell

// Metric is a named summary value. Unit is "KB" for capacities and empty
// for counts.
type Metric struct {
	Name  string
	Value int
	Unit  string
}

// Engine is the common surface of both allocation policies.
type Engine interface {
	Mode() Mode
	// Allocate returns the block number (first-fit) or class capacity
	// (quick-fit) that satisfied the request.
	Allocate(size int) (int, error)
	// Release frees by block number (first-fit) or block size (quick-fit).
	Release(id int) error
	Reset()

	Columns() []string
	Rows() []Row
	Stats() []Metric
	// State returns a canonical vector of the engine state for fingerprinting.
	State() []int64

	describer
}

type describer interface {
	describe(a Action, value int, err error) (title, message string)
}

// NewEngine builds a fresh engine for mode from cfg.
func NewEngine(cfg config.Config, mode Mode) (Engine, error) {
	switch mode {
	case FirstFit:
		return newFirstFitEngine(cfg.FirstFit.Blocks)
	case QuickFit:
		return newQuickFitEngine(cfg.QuickFit.Classes, cfg.QuickFit.Population, cfg.QuickFitOptions()...)
	}
	return nil, fmt.Errorf("unknown simulation mode %q", mode)
}

func yesNo(b bool) Cell {
	if b {
		return Cell{Text: "Yes", Highlight: HighlightOccupied}
	}
	return Cell{Text: "No", Highlight: HighlightFree}
}

func intCell(v int) Cell {
	return Cell{Text: fmt.Sprint(v)}
}
