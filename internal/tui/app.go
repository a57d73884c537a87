package tui

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"
	"github.com/sadopc/pathtrack/internal/curriculum"
	"github.com/sadopc/pathtrack/internal/logging"
	"github.com/sadopc/pathtrack/internal/store"
	"github.com/sadopc/pathtrack/internal/tracker"
)

// Options configures the App.
type Options struct {
	Store *store.Store
	// Source is the configured learning path; a stored override wins.
	Source       string
	FetchTimeout time.Duration
	ExportDir    string
}

// App is the root Bubble Tea model.
type App struct {
	store   *store.Store
	tracker *tracker.Tracker
	state   *tracker.State
	opts    Options
	log     zerolog.Logger

	width  int
	height int

	activeView    viewState
	showHelp      bool
	loading       bool
	exportPicking bool
	exportCursor  int
	importing     bool

	path     pathModel
	detail   detailModel
	stats    statsModel
	settings settingsModel

	spinner        spinner.Model
	picker         filepicker.Model
	resetForm      *huh.Form
	resetConfirmed *bool

	help     help.Model
	notice   tracker.Notice
	noticeID int
}

func NewApp(opts Options) App {
	h := help.New()
	h.ShowAll = false

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	st := tracker.NewState()
	tr := tracker.New(opts.Store)

	a := App{
		store:      opts.Store,
		tracker:    tr,
		state:      st,
		opts:       opts,
		log:        logging.Component("tui"),
		activeView: viewPath,
		loading:    true,
		path:       newPathModel(),
		stats:      newStatsModel(),
		settings:   newSettingsModel(opts.Store, opts.Source),
		spinner:    sp,
		help:       h,
	}

	if err := tr.Init(st); err != nil {
		a.notice = tracker.NoticeFor(err)
	}
	applyTheme(st.Theme)
	a.refresh()
	return a
}

func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{
		a.spinner.Tick,
		a.loadCmd(a.tracker.BeginLoad(a.state)),
		a.settings.refresh(),
	}
	if a.notice.Text != "" {
		cmds = append(cmds, clearNoticeAfter(a.noticeID))
	}
	return tea.Batch(cmds...)
}

// loadCmd fetches the learning path in the background. The result carries
// gen so a load superseded by a later one is discarded.
func (a App) loadCmd(gen uint64) tea.Cmd {
	loader := curriculum.NewLoader(a.settings.effectiveSource(), a.opts.FetchTimeout)
	return func() tea.Msg {
		doc, err := loader.Load(context.Background())
		return docLoadedMsg{gen: gen, doc: doc, err: err}
	}
}

func (a App) importCmd(path string) tea.Cmd {
	tr := a.tracker
	return func() tea.Msg {
		doc, err := tr.ReadImport(path)
		return importParsedMsg{path: path, doc: doc, err: err}
	}
}

func clearNoticeAfter(id int) tea.Cmd {
	return tea.Tick(noticeTTL, func(time.Time) tea.Msg {
		return clearNoticeMsg{id: id}
	})
}

// setNotice shows n until a newer notice replaces it or noticeTTL passes.
func (a *App) setNotice(n tracker.Notice) tea.Cmd {
	a.noticeID++
	a.notice = n
	return clearNoticeAfter(a.noticeID)
}

// refresh re-renders every view from the state.
func (a *App) refresh() {
	tree := a.tracker.Render(a.state)
	a.path.setTree(tree)
	a.stats.setStats(a.tracker.TopicStats(a.state), tree.Overview)
	if a.detail.open {
		if dv, ok := a.tracker.Detail(a.state, a.detail.detail.TopicKey, a.detail.detail.Index); ok {
			a.detail.show(dv)
		} else {
			a.detail.close()
		}
	}
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.path.setSize(a.width, contentHeight)
		a.detail.setSize(a.width, contentHeight)
		a.stats.setSize(a.width, contentHeight)
		a.settings.setSize(a.width, contentHeight)
		a.picker.Height = max(contentHeight-6, 5)
		return a, nil

	case docLoadedMsg:
		return a.applyLoaded(msg)

	case importParsedMsg:
		return a.applyImport(msg)

	case exportDoneMsg:
		a.exportPicking = false
		if msg.err != nil {
			cmd := a.setNotice(tracker.NoticeFor(msg.err))
			return a, cmd
		}
		a.log.Info().Str("path", msg.path).Msg("export written")
		cmd := a.setNotice(tracker.Success(tracker.MsgExported))
		return a, cmd

	case settingsSavedMsg:
		return a.applySettings(msg)

	case clearNoticeMsg:
		if msg.id == a.noticeID {
			a.notice = tracker.Notice{}
		}
		return a, nil

	case spinner.TickMsg:
		if !a.loading {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case scrollTickMsg:
		var cmd tea.Cmd
		a.path, cmd = a.path.update(msg)
		return a, cmd

	case tea.KeyMsg:
		return a.handleKey(msg)
	}

	// Anything else goes to whichever component is capturing input.
	switch {
	case a.resetForm != nil:
		return a.updateReset(msg)
	case a.importing:
		return a.updatePicker(msg)
	}
	return a.updateActiveView(msg)
}

func (a App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case a.resetForm != nil:
		return a.updateReset(msg)
	case a.importing:
		return a.updatePicker(msg)
	case a.exportPicking:
		return a.updateExportPicker(msg)
	case a.isFormActive():
		return a.updateActiveView(msg)
	case a.detail.open:
		return a.updateDetail(msg)
	}

	switch {
	case key.Matches(msg, keys.Quit):
		return a, tea.Quit
	case key.Matches(msg, keys.Help):
		a.showHelp = !a.showHelp
		a.help.ShowAll = a.showHelp
		return a, nil
	case key.Matches(msg, keys.Tab1):
		a.activeView = viewPath
		return a, nil
	case key.Matches(msg, keys.Tab2):
		a.activeView = viewStats
		return a, nil
	case key.Matches(msg, keys.Tab3):
		a.activeView = viewSettings
		return a, a.settings.refresh()
	case key.Matches(msg, keys.Tab):
		a.activeView = (a.activeView + 1) % viewState(len(viewNames))
		if a.activeView == viewSettings {
			return a, a.settings.refresh()
		}
		return a, nil
	case key.Matches(msg, keys.Import):
		return a.openPicker()
	case key.Matches(msg, keys.Export):
		a.exportPicking = true
		a.exportCursor = 0
		return a, nil
	case key.Matches(msg, keys.Reset):
		return a.openReset()
	case key.Matches(msg, keys.Theme):
		return a.toggleTheme()
	}

	if a.activeView == viewPath {
		if a.path.navFocus {
			return a.updateActiveView(msg)
		}
		switch {
		case key.Matches(msg, keys.Toggle):
			if tile, ok := a.path.selected(); ok {
				cmd := a.toggle(tile.TopicKey, tile.Index)
				return a, cmd
			}
			return a, nil
		case key.Matches(msg, keys.Enter):
			if tile, ok := a.path.selected(); ok {
				if dv, ok := a.tracker.Detail(a.state, tile.TopicKey, tile.Index); ok {
					a.detail.show(dv)
				}
			}
			return a, nil
		}
	}

	return a.updateActiveView(msg)
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewPath:
		a.path, cmd = a.path.update(msg)
	case viewSettings:
		a.settings, cmd = a.settings.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	return a.activeView == viewSettings && a.settings.formActive
}

// --- Loading ---

func (a App) applyLoaded(msg docLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.gen != a.state.Generation() {
		a.log.Debug().Uint64("gen", msg.gen).Msg("ignoring superseded load")
		return a, nil
	}
	a.loading = false
	if msg.err != nil {
		a.log.Warn().Err(msg.err).Msg("learning path load failed")
		a.refresh()
		cmd := a.setNotice(tracker.NoticeFor(msg.err))
		return a, cmd
	}

	applied, err := a.tracker.ApplyDocument(a.state, msg.gen, msg.doc)
	if !applied {
		return a, nil
	}
	a.refresh()
	if err != nil {
		cmd := a.setNotice(tracker.NoticeFor(err))
		return a, cmd
	}
	return a, nil
}

func (a App) applyImport(msg importParsedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		a.log.Warn().Err(msg.err).Str("path", msg.path).Msg("import rejected")
		cmd := a.setNotice(tracker.NoticeFor(msg.err))
		return a, cmd
	}

	gen := a.tracker.BeginLoad(a.state)
	_, err := a.tracker.ApplyDocument(a.state, gen, msg.doc)
	a.loading = false
	a.activeView = viewPath
	a.refresh()
	if err != nil {
		cmd := a.setNotice(tracker.NoticeFor(err))
		return a, cmd
	}
	a.log.Info().Str("path", msg.path).Msg("learning path imported")
	cmd := a.setNotice(tracker.Success(tracker.MsgImported))
	return a, cmd
}

// --- Handlers ---

func (a *App) toggle(topicKey string, index int) tea.Cmd {
	_, err := a.tracker.Toggle(a.state, topicKey, index)
	a.refresh()
	if err != nil {
		return a.setNotice(tracker.NoticeFor(err))
	}
	return nil
}

func (a App) toggleTheme() (tea.Model, tea.Cmd) {
	next, err := a.tracker.ToggleTheme(a.state)
	applyTheme(next)
	a.refresh()
	if err != nil {
		cmd := a.setNotice(tracker.NoticeFor(err))
		return a, cmd
	}
	return a, nil
}

func (a App) applySettings(msg settingsSavedMsg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	theme := store.ParseTheme(msg.theme)
	if theme != a.state.Theme {
		if err := a.tracker.SetTheme(a.state, theme); err != nil {
			cmds = append(cmds, a.setNotice(tracker.NoticeFor(err)))
		}
		applyTheme(theme)
		a.refresh()
	}

	before := a.settings.effectiveSource()
	override := msg.source
	if override == a.opts.Source {
		override = ""
	}
	if err := a.store.SetDocumentSource(override); err != nil {
		cmds = append(cmds, a.setNotice(tracker.NoticeFor(err)))
	}
	if after := a.settings.effectiveSource(); after != before {
		a.log.Info().Str("source", after).Msg("document source changed")
		a.loading = true
		cmds = append(cmds, a.spinner.Tick, a.loadCmd(a.tracker.BeginLoad(a.state)))
	}

	cmds = append(cmds, a.settings.refresh())
	return a, tea.Batch(cmds...)
}

// --- Detail overlay ---

func (a App) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Back), key.Matches(msg, keys.Enter):
		a.detail.close()
	case key.Matches(msg, keys.Toggle):
		cmd := a.toggle(a.detail.detail.TopicKey, a.detail.detail.Index)
		return a, cmd
	case key.Matches(msg, keys.Quit):
		return a, tea.Quit
	}
	return a, nil
}

// --- Reset confirmation ---

func (a App) openReset() (tea.Model, tea.Cmd) {
	confirmed := false
	a.resetConfirmed = &confirmed
	a.resetForm = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(tracker.ResetPrompt).
				Affirmative("Reset").
				Negative("Cancel").
				Value(a.resetConfirmed),
		),
	).WithShowHelp(true)
	return a, a.resetForm.Init()
}

func (a App) updateReset(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "esc" {
		a.resetForm = nil
		return a, nil
	}

	form, cmd := a.resetForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.resetForm = f
	}

	switch a.resetForm.State {
	case huh.StateCompleted:
		confirmed := *a.resetConfirmed
		a.resetForm = nil
		cmd := a.reset(func(string) bool { return confirmed })
		return a, cmd
	case huh.StateAborted:
		a.resetForm = nil
		return a, nil
	}
	return a, cmd
}

func (a *App) reset(confirm tracker.Confirmer) tea.Cmd {
	did, err := a.tracker.Reset(a.state, confirm)
	if !did {
		return nil
	}
	a.refresh()
	if err != nil {
		return a.setNotice(tracker.NoticeFor(err))
	}
	return a.setNotice(tracker.Success(tracker.MsgReset))
}

// --- Import picker ---

func (a App) openPicker() (tea.Model, tea.Cmd) {
	fp := filepicker.New()
	fp.AllowedTypes = []string{".json"}
	fp.ShowHidden = false
	fp.AutoHeight = false
	fp.Height = max(a.height-10, 5)
	if wd, err := os.Getwd(); err == nil {
		fp.CurrentDirectory = wd
	}
	a.picker = fp
	a.importing = true
	return a, a.picker.Init()
}

func (a App) updatePicker(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "esc" {
		a.importing = false
		return a, nil
	}

	var cmd tea.Cmd
	a.picker, cmd = a.picker.Update(msg)

	if ok, path := a.picker.DidSelectFile(msg); ok {
		a.importing = false
		return a, a.importCmd(path)
	}
	if ok, path := a.picker.DidSelectDisabledFile(msg); ok {
		cmd := a.setNotice(tracker.Failure("Not a JSON file: " + path))
		return a, cmd
	}
	return a, cmd
}

// --- Export picker ---

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < len(tracker.Formats)-1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(tracker.Formats[a.exportCursor])
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

// doExport writes a snapshot of the state so later updates cannot race the
// background write.
func (a App) doExport(format tracker.Format) tea.Cmd {
	snap := &tracker.State{
		Document: a.state.Document,
		Progress: a.state.Progress.Clone(),
		Theme:    a.state.Theme,
	}
	tr := a.tracker
	dir := a.opts.ExportDir
	return func() tea.Msg {
		path, err := tr.ExportAs(snap, format, dir)
		return exportDoneMsg{path: path, err: err}
	}
}

// --- Rendering ---

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewPath:
		content = a.path.view()
		if a.loading && a.state.Document.IsEmpty() {
			content = panelStyle.Width(a.width - 4).Render(
				a.spinner.View() + " Loading learning path from " + a.settings.effectiveSource() + "...",
			)
		}
	case viewStats:
		content = a.stats.view()
	case viewSettings:
		content = a.settings.view()
	}

	// Calculate available height for content
	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := a.height - headerHeight - footerHeight
	if contentHeight < 1 {
		contentHeight = 1
	}

	// Overlays, innermost last
	switch {
	case a.resetForm != nil:
		content = activePanelStyle.Width(a.width - 4).Render(
			lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render("Reset Progress"), "", a.resetForm.View()),
		)
	case a.importing:
		content = activePanelStyle.Width(a.width - 4).Render(
			lipgloss.JoinVertical(lipgloss.Left,
				titleStyle.Render("Import Learning Path"),
				mutedStyle.Render(a.picker.CurrentDirectory),
				"",
				a.picker.View(),
				"",
				mutedStyle.Render("enter: open/select  esc: cancel"),
			),
		)
	case a.exportPicking:
		content = a.renderExportPicker()
	case a.detail.open:
		content = a.detail.view()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("pathtrack")
	gap := a.width - lipgloss.Width(title) - lipgloss.Width(tabRow) - 4
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.notice.Text != "" {
		switch a.notice.Kind {
		case tracker.NoticeSuccess:
			status = successStyle.Render(" " + a.notice.Text)
		case tracker.NoticeError:
			status = errorStyle.Render(" " + a.notice.Text)
		default:
			status = mutedStyle.Render(" " + a.notice.Text)
		}
	}

	themeInfo := mutedStyle.Render(" ☀")
	if a.state.Theme.IsDark() {
		themeInfo = mutedStyle.Render(" ☾")
	}
	if a.loading {
		themeInfo = warningStyle.Render(" "+a.spinner.View()) + themeInfo
	}

	left := footerStyle.Render(helpView)
	right := status + themeInfo

	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

func (a App) renderExportPicker() string {
	title := titleStyle.Render("Export Format")
	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	for i, f := range tracker.Formats {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+strings.ToUpper(string(f))))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: export  esc: cancel"))

	w := a.width - 4
	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
