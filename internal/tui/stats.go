package tui

import (
	"fmt"
	"strings"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/pathtrack/internal/view"
)

type statsModel struct {
	width  int
	height int

	stats    []view.TopicStat
	overview view.Overview

	chart barchart.Model
}

func newStatsModel() statsModel {
	return statsModel{
		chart: barchart.New(60, 12),
	}
}

func (s *statsModel) setSize(w, h int) {
	s.width = w
	s.height = h
	s.buildChart()
}

func (s *statsModel) setStats(stats []view.TopicStat, overview view.Overview) {
	s.stats = stats
	s.overview = overview
	s.buildChart()
}

func (s *statsModel) buildChart() {
	chartWidth := s.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	chartHeight := 12
	if s.height > 30 {
		chartHeight = 16
	}

	// Bars are percentages so topics of different sizes compare.
	s.chart = barchart.New(chartWidth, chartHeight, barchart.WithMaxValue(100))

	bars := make([]barchart.BarData, 0, len(s.stats))
	for _, st := range s.stats {
		bars = append(bars, barchart.BarData{
			Label: truncate(st.Label, 10),
			Values: []barchart.BarValue{{
				Name:  st.Label,
				Value: st.Percent(),
				Style: accentStyle(st.Accent),
			}},
		})
	}
	if len(bars) == 0 {
		return
	}
	s.chart.PushAll(bars)
	s.chart.Draw()
}

func (s statsModel) view() string {
	w := s.width - 4

	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Stats"), "  ",
		mutedStyle.Render(fmt.Sprintf("%d / %d completed", s.overview.Completed, s.overview.Total)),
	)

	if len(s.stats) == 0 {
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, header, "", mutedStyle.Render("  No learning path loaded")),
		)
	}

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "", s.chart.View(), "", s.renderTable(w),
		),
	)
}

func (s statsModel) renderTable(w int) string {
	var rows []string
	headerRow := mutedStyle.Render(fmt.Sprintf("  %-28s %10s %8s", "Topic", "Completed", "Percent"))
	rows = append(rows, headerRow)
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", min(w-6, 48))))

	for _, st := range s.stats {
		colorDot := accentStyle(st.Accent).Render("●")
		pct := fmt.Sprintf("%.0f%%", st.Percent())
		if st.Total > 0 && st.Completed == st.Total {
			pct = successStyle.Render(pct)
		} else if st.Completed == 0 {
			pct = warningStyle.Render(pct)
		}
		rows = append(rows, fmt.Sprintf("  %s %-26s %10s %8s",
			colorDot, truncate(st.Label, 26), fmt.Sprintf("%d/%d", st.Completed, st.Total), pct,
		))
	}

	return strings.Join(rows, "\n")
}
