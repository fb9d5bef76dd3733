package ui

import "time"

// Terminal width thresholds for responsive layouts.
const (
	// LayoutCompactWidth is the threshold below which the side panes stack
	// above the results instead of beside them.
	LayoutCompactWidth = 100

	// SidebarWidth is the width of the files and columns panes.
	SidebarWidth = 34
)

// Display limits.
const (
	// SuggestionRows caps the height of the suggestion dropdown.
	SuggestionRows = 8

	// LogTailLines is how many lines of the client log are shown.
	LogTailLines = 500

	// PreviewLines is how many lines of a local file the upload dialog shows.
	PreviewLines = 6
)

// Timing constants.
const (
	// ToastTick is how often expired toasts are swept.
	ToastTick = time.Second

	// ProgressHideDelay is how long the upload bar stays after success.
	ProgressHideDelay = 3 * time.Second
)
