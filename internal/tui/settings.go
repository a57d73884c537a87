package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/pathtrack/internal/store"
)

type settingsModel struct {
	store  *store.Store
	width  int
	height int

	// configured is the document source from the config file or flags; a
	// stored override takes precedence.
	configured string

	settings   []store.Setting
	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	theme  *string
	source *string
}

func newSettingsModel(s *store.Store, configured string) settingsModel {
	th, src := "", ""
	return settingsModel{
		store:      s,
		configured: configured,
		theme:      &th,
		source:     &src,
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

type settingsDataMsg struct {
	settings []store.Setting
}

func (s settingsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		settings, _ := s.store.GetAllSettings()
		return settingsDataMsg{settings: settings}
	}
}

// source returns the document source a reload would use.
func (s settingsModel) effectiveSource() string {
	if src := s.store.GetDocumentSource(); src != "" {
		return src
	}
	return s.configured
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	switch msg := msg.(type) {
	case settingsDataMsg:
		s.settings = msg.settings
		return s, nil

	case tea.KeyMsg:
		if key.Matches(msg, keys.Enter) {
			return s.showForm()
		}
	}
	return s, nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	*s.theme = string(s.store.GetTheme())
	*s.source = s.effectiveSource()

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().Title("Theme").
				Options(
					huh.NewOption("Light", string(store.ThemeLight)),
					huh.NewOption("Dark", string(store.ThemeDark)),
				).Value(s.theme),
			huh.NewInput().Title("Learning path").
				Description("File path or http(s) URL. Leave empty for the configured default.").
				Value(s.source),
		).Title("General"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			s.formActive = false
			s.form = nil
			return s, nil
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		saved := settingsSavedMsg{theme: *s.theme, source: strings.TrimSpace(*s.source)}
		return s, func() tea.Msg { return saved }
	}

	return s, cmd
}

func (s settingsModel) view() string {
	w := s.width - 4

	if s.formActive && s.form != nil {
		title := titleStyle.Render("Settings")
		formView := s.form.View()
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", formView),
		)
	}

	title := titleStyle.Render("Settings")
	hint := mutedStyle.Render("Press enter to edit settings")

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	for _, setting := range s.settings {
		label := lipgloss.NewStyle().Width(24).Render(setting.Key)
		value := highlightStyle.Render(formatSettingValue(setting.Key, setting.Value))
		rows = append(rows, fmt.Sprintf("  %s %s", label, value))
	}
	if s.store.GetDocumentSource() == "" {
		label := lipgloss.NewStyle().Width(24).Render("document (config)")
		rows = append(rows, fmt.Sprintf("  %s %s", label, highlightStyle.Render(s.configured)))
	}

	rows = append(rows, "")
	rows = append(rows, hint)

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

// formatSettingValue keeps the progress blob readable.
func formatSettingValue(k, v string) string {
	switch k {
	case store.KeyProgress:
		p, err := store.DecodeProgress(v)
		if err != nil {
			return errorStyle.Render("unreadable")
		}
		return fmt.Sprintf("%d completed", p.Len())
	case store.KeyTheme:
		if store.ParseTheme(v).IsDark() {
			return "dark"
		}
		return "light"
	}
	return v
}
