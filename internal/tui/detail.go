package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/pathtrack/internal/view"
)

// detailModel is the overlay describing one subtopic.
type detailModel struct {
	width  int
	height int

	open   bool
	detail view.DetailView
}

func (d *detailModel) setSize(w, h int) {
	d.width = w
	d.height = h
}

func (d *detailModel) show(dv view.DetailView) {
	d.detail = dv
	d.open = true
}

func (d *detailModel) close() {
	d.open = false
	d.detail = view.DetailView{}
}

func (d detailModel) view() string {
	w := d.width - 4
	dv := d.detail

	status := "[ ] Not completed"
	statusStyle := mutedStyle
	if dv.Completed {
		status = "[x] Completed"
		statusStyle = successStyle
	}

	field := func(label, value string) string {
		return fmt.Sprintf("  %s %s",
			lipgloss.NewStyle().Width(16).Foreground(colorMuted).Render(label),
			normalItemStyle.Render(value))
	}

	rows := []string{
		titleStyle.Render(dv.Title) + mutedStyle.Render("  "+dv.ItemLabel),
		"",
		lipgloss.NewStyle().Width(max(w-6, 20)).Render(dv.Description),
		"",
		field("Start date", dv.StartDate),
		field("End date", dv.EndDate),
		field("Estimated time", dv.EstimatedTime),
		field("Status", dv.Status),
		"",
		subtitleStyle.Render("Subtopics"),
	}
	if len(dv.Items) == 0 {
		rows = append(rows, mutedStyle.Render("  "+view.Placeholder))
	}
	for _, item := range dv.Items {
		rows = append(rows, "  • "+item)
	}
	rows = append(rows,
		"",
		statusStyle.Render(status),
		"",
		mutedStyle.Render("space: toggle complete  esc: close"),
	)

	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
