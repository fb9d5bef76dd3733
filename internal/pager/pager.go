// Package pager computes the page-number controls shown under search
// results. It holds no query state; each control only carries the page it
// navigates to.
package pager

import "strconv"

// Kind identifies a control.
type Kind int

const (
	Previous Kind = iota
	Page
	Ellipsis
	Next
)

// WindowSize is the maximum number of consecutive page buttons.
const WindowSize = 5

// Control is one pagination element.
type Control struct {
	Kind     Kind
	Target   int // page to load; zero for ellipses
	Current  bool
	Disabled bool
}

// Label is the text shown for the control.
func (c Control) Label() string {
	switch c.Kind {
	case Previous:
		return "‹ Prev"
	case Next:
		return "Next ›"
	case Ellipsis:
		return "…"
	default:
		return strconv.Itoa(c.Target)
	}
}

// Selectable reports whether activating the control should load a page.
func (c Control) Selectable() bool {
	return c.Kind != Ellipsis && !c.Disabled && !c.Current
}

// Build returns the controls for current out of total pages, or nil when
// total <= 1. current is clamped into range.
func Build(current, total int) []Control {
	if total <= 1 {
		return nil
	}
	current = max(1, min(current, total))

	start := max(1, current-WindowSize/2)
	end := min(total, start+WindowSize-1)
	if end-start+1 < WindowSize {
		start = max(1, end-WindowSize+1)
	}

	controls := []Control{{
		Kind:     Previous,
		Target:   max(1, current-1),
		Disabled: current == 1,
	}}

	if start > 1 {
		controls = append(controls, Control{Kind: Page, Target: 1})
		if start > 2 {
			controls = append(controls, Control{Kind: Ellipsis})
		}
	}

	for p := start; p <= end; p++ {
		controls = append(controls, Control{Kind: Page, Target: p, Current: p == current})
	}

	if end < total {
		if end < total-1 {
			controls = append(controls, Control{Kind: Ellipsis})
		}
		controls = append(controls, Control{Kind: Page, Target: total})
	}

	controls = append(controls, Control{
		Kind:     Next,
		Target:   min(total, current+1),
		Disabled: current == total,
	})
	return controls
}
