package ui

import "github.com/rivo/tview"

// MenuHint describes a keyboard shortcut for display in the menu.
type MenuHint struct {
	Key         string
	Description string
	Numeric     bool // true for 1-9 shortcuts (displayed in a different color)
}

// Component is a page of the TUI.
type Component interface {
	tview.Primitive
	// Name is the crumb label of the page.
	Name() string
	// Hints lists the page's own shortcuts for the menu.
	Hints() []MenuHint
	// Focus target when the page becomes active.
	FocusTarget() tview.Primitive
}
