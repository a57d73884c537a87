package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/harmonica"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/pathtrack/internal/view"
)

const (
	navWidth  = 26
	scrollFPS = 60
)

// slot locates one tile inside the display tree.
type slot struct {
	card int
	tile int
}

type pathModel struct {
	width  int
	height int

	tree   view.DisplayTree
	slots  []slot
	cursor int

	// While navFocus is set, up/down move navCursor over the sidebar and
	// enter jumps to that card.
	navFocus  bool
	navCursor int

	// Content line of each card header and of each slot.
	cardLines []int
	slotLines []int

	vp  viewport.Model
	bar progress.Model

	// Smooth scroll state. A newer scroll bumps scrollID so ticks of an
	// older one are ignored.
	spring       harmonica.Spring
	scrollID     int
	scrolling    bool
	scrollPos    float64
	scrollVel    float64
	scrollTarget float64
}

func newPathModel() pathModel {
	return pathModel{
		vp:     viewport.New(60, 20),
		bar:    progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		spring: harmonica.NewSpring(harmonica.FPS(scrollFPS), 6.0, 1.0),
	}
}

func (p *pathModel) setSize(w, h int) {
	p.width = w
	p.height = h
	p.vp.Width = max(w-navWidth-6, 20)
	p.vp.Height = max(h-6, 3)
	p.bar.Width = max(min(w-40, 50), 10)
	p.renderContent()
}

// setTree replaces the display tree, keeping the cursor on the same tile
// when it still exists.
func (p *pathModel) setTree(tree view.DisplayTree) {
	var prevKey string
	if t, ok := p.selected(); ok {
		prevKey = t.ProgressKey
	}

	p.tree = tree
	p.slots = nil
	for ci, card := range tree.Cards {
		for ti := range card.Tiles {
			p.slots = append(p.slots, slot{card: ci, tile: ti})
		}
	}

	p.cursor = 0
	for i, s := range p.slots {
		if tree.Cards[s.card].Tiles[s.tile].ProgressKey == prevKey {
			p.cursor = i
			break
		}
	}
	if len(tree.Cards) == 0 {
		p.navFocus = false
		p.navCursor = 0
	} else {
		p.navCursor = min(p.navCursor, len(tree.Cards)-1)
	}
	p.renderContent()
}

func (p pathModel) selected() (view.Tile, bool) {
	if p.cursor < 0 || p.cursor >= len(p.slots) {
		return view.Tile{}, false
	}
	s := p.slots[p.cursor]
	return p.tree.Cards[s.card].Tiles[s.tile], true
}

func (p pathModel) currentCard() int {
	if p.cursor < 0 || p.cursor >= len(p.slots) {
		return -1
	}
	return p.slots[p.cursor].card
}

func (p pathModel) update(msg tea.Msg) (pathModel, tea.Cmd) {
	switch msg := msg.(type) {
	case scrollTickMsg:
		return p.stepScroll(msg)

	case tea.KeyMsg:
		if p.navFocus {
			return p.updateNav(msg)
		}
		switch {
		case key.Matches(msg, keys.Up):
			p.moveCursor(-1)
		case key.Matches(msg, keys.Down):
			p.moveCursor(1)
		case key.Matches(msg, keys.PrevTopic):
			return p.jumpTopic(-1)
		case key.Matches(msg, keys.NextTopic):
			return p.jumpTopic(1)
		case key.Matches(msg, keys.GoTo):
			if len(p.tree.Cards) > 0 {
				p.navFocus = true
				p.navCursor = max(p.currentCard(), 0)
			}
		}
	}
	return p, nil
}

func (p pathModel) updateNav(msg tea.KeyMsg) (pathModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		p.navCursor = max(p.navCursor-1, 0)
	case key.Matches(msg, keys.Down):
		p.navCursor = min(p.navCursor+1, len(p.tree.Cards)-1)
	case key.Matches(msg, keys.Enter):
		p.navFocus = false
		return p.jumpToCard(p.navCursor)
	case key.Matches(msg, keys.Back), key.Matches(msg, keys.GoTo):
		p.navFocus = false
	}
	return p, nil
}

func (p *pathModel) moveCursor(delta int) {
	if len(p.slots) == 0 {
		return
	}
	p.cursor = max(0, min(p.cursor+delta, len(p.slots)-1))
	p.scrollID++
	p.scrolling = false
	p.renderContent()
	p.ensureVisible()
}

func (p *pathModel) ensureVisible() {
	if p.cursor >= len(p.slotLines) {
		return
	}
	line := p.slotLines[p.cursor]
	switch {
	case line < p.vp.YOffset:
		p.vp.SetYOffset(line)
	case line >= p.vp.YOffset+p.vp.Height:
		p.vp.SetYOffset(line - p.vp.Height + 1)
	}
}

// jumpTopic moves to the previous or next card that has tiles.
func (p pathModel) jumpTopic(dir int) (pathModel, tea.Cmd) {
	cur := p.currentCard()
	if cur < 0 {
		return p, nil
	}
	for ci := cur + dir; ci >= 0 && ci < len(p.tree.Cards); ci += dir {
		if len(p.tree.Cards[ci].Tiles) > 0 {
			return p.jumpToCard(ci)
		}
	}
	return p, nil
}

// jumpToCard puts the cursor on the card's first tile, if it has one, and
// starts a smooth scroll to the card.
func (p pathModel) jumpToCard(ci int) (pathModel, tea.Cmd) {
	if ci < 0 || ci >= len(p.tree.Cards) {
		return p, nil
	}
	for i, s := range p.slots {
		if s.card == ci {
			p.cursor = i
			break
		}
	}
	p.renderContent()
	return p.scrollTo(p.cardLines[ci])
}

func (p pathModel) scrollTo(line int) (pathModel, tea.Cmd) {
	maxOffset := max(p.vp.TotalLineCount()-p.vp.Height, 0)
	p.scrollTarget = float64(min(line, maxOffset))
	if !p.scrolling {
		p.scrollPos = float64(p.vp.YOffset)
		p.scrollVel = 0
	}
	p.scrolling = true
	p.scrollID++
	return p, scrollTick(p.scrollID)
}

func scrollTick(id int) tea.Cmd {
	return tea.Tick(time.Second/scrollFPS, func(time.Time) tea.Msg {
		return scrollTickMsg{id: id}
	})
}

func (p pathModel) stepScroll(msg scrollTickMsg) (pathModel, tea.Cmd) {
	if !p.scrolling || msg.id != p.scrollID {
		return p, nil
	}
	p.scrollPos, p.scrollVel = p.spring.Update(p.scrollPos, p.scrollVel, p.scrollTarget)
	if math.Abs(p.scrollPos-p.scrollTarget) < 0.5 && math.Abs(p.scrollVel) < 0.5 {
		p.scrolling = false
		p.vp.SetYOffset(int(p.scrollTarget))
		return p, nil
	}
	p.vp.SetYOffset(int(math.Round(p.scrollPos)))
	return p, scrollTick(p.scrollID)
}

// renderContent writes the cards into the viewport and records line offsets.
func (p *pathModel) renderContent() {
	p.cardLines = nil
	p.slotLines = nil

	labelWidth := max(p.vp.Width-10, 10)
	var lines []string
	si := 0
	for ci, card := range p.tree.Cards {
		if ci > 0 {
			lines = append(lines, "")
		}
		p.cardLines = append(p.cardLines, len(lines))
		header := accentStyle(card.Accent).Bold(true).Render("▌ "+card.Title) +
			mutedStyle.Render(fmt.Sprintf("  %d/%d", card.Completed, card.Total))
		lines = append(lines, header)

		if len(card.Tiles) == 0 {
			lines = append(lines, mutedStyle.Render("    (no items)"))
			continue
		}
		for _, tile := range card.Tiles {
			p.slotLines = append(p.slotLines, len(lines))
			lines = append(lines, p.renderTile(tile, si == p.cursor, labelWidth))
			si++
		}
	}
	p.vp.SetContent(strings.Join(lines, "\n"))
}

func (p pathModel) renderTile(tile view.Tile, selected bool, labelWidth int) string {
	cursor := "  "
	mark := "[ ]"
	if tile.Completed {
		mark = successStyle.Render("[x]")
	}
	label := fmt.Sprintf("%2d. %s", tile.Number, truncate(tile.Label, labelWidth))

	style := normalItemStyle
	switch {
	case selected:
		cursor = "> "
		style = selectedItemStyle
	case tile.Completed:
		style = doneItemStyle
	}
	return cursor + mark + " " + style.Render(label)
}

func (p pathModel) view() string {
	w := p.width - 4

	if p.tree.Empty != nil {
		body := lipgloss.JoinVertical(lipgloss.Left,
			titleStyle.Render(p.tree.Empty.Title),
			"",
			subtitleStyle.Render(p.tree.Empty.Hint),
			"",
			mutedStyle.Render("Press i to import a JSON file."),
		)
		return panelStyle.Width(w).Render(body)
	}

	ov := p.tree.Overview
	overview := lipgloss.JoinHorizontal(lipgloss.Center,
		" ", p.bar.ViewAs(ov.Fraction()), "  ",
		highlightStyle.Render(fmt.Sprintf("%d / %d completed (%.0f%%)", ov.Completed, ov.Total, ov.Fraction()*100)),
	)

	nav := p.renderNav()
	cards := activePanelStyle.Padding(0, 1).Render(p.vp.View())

	return lipgloss.JoinVertical(lipgloss.Left,
		overview,
		"",
		lipgloss.JoinHorizontal(lipgloss.Top, nav, cards),
	)
}

func (p pathModel) renderNav() string {
	current := p.currentCard()
	rows := []string{titleStyle.Render("Topics"), ""}
	for i, entry := range p.tree.Nav {
		dot := accentStyle(entry.Accent).Render("●")
		label := truncate(entry.Label, navWidth-8)
		cursor := "  "
		if p.navFocus && i == p.navCursor {
			cursor = "> "
		}
		if i == current {
			rows = append(rows, cursor+dot+" "+selectedItemStyle.Render(label))
		} else {
			rows = append(rows, cursor+dot+" "+normalItemStyle.Render(label))
		}
	}
	return lipgloss.NewStyle().
		Width(navWidth).
		Height(p.vp.Height).
		Padding(0, 1).
		Render(strings.Join(rows, "\n"))
}
