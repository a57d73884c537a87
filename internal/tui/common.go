package tui

import (
	"time"

	"github.com/sadopc/pathtrack/internal/curriculum"
)

// viewState represents the currently active view.
type viewState int

const (
	viewPath viewState = iota
	viewStats
	viewSettings
)

var viewNames = []string{"Path", "Stats", "Settings"}

const noticeTTL = 3 * time.Second

// --- Messages ---

// docLoadedMsg carries the result of a load started with generation gen.
type docLoadedMsg struct {
	gen uint64
	doc curriculum.Document
	err error
}

// importParsedMsg carries a parsed import file; nothing has been applied yet.
type importParsedMsg struct {
	path string
	doc  curriculum.Document
	err  error
}

type clearNoticeMsg struct {
	id int
}

type exportDoneMsg struct {
	path string
	err  error
}

// settingsSavedMsg is sent when the settings form completes.
type settingsSavedMsg struct {
	theme  string
	source string
}

type scrollTickMsg struct {
	id int
}

// --- Helpers ---

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width <= 1 {
		return ""
	}
	return string(r[:width-1]) + "…"
}
