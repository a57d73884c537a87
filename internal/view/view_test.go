package view

import (
	"testing"

	"github.com/sadopc/pathtrack/internal/curriculum"
	"github.com/sadopc/pathtrack/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, s string) curriculum.Document {
	t.Helper()
	doc, err := curriculum.Parse([]byte(s))
	require.NoError(t, err)
	return doc
}

const linuxDoc = `{"linux_basics":[{"topic":"Shell"},{"topic":"Permissions"}]}`

func TestRenderWithoutProgress(t *testing.T) {
	doc := mustParse(t, `{"a":[{"topic":"1"},{"topic":"2"}],"b":[{"topic":"3"}],"c":[]}`)
	tree := Render(doc, store.Progress{}, NewAccents())

	require.Nil(t, tree.Empty)
	require.Len(t, tree.Cards, 3)
	for _, card := range tree.Cards {
		for _, tile := range card.Tiles {
			assert.False(t, tile.Completed)
		}
	}
	assert.Equal(t, 0, tree.Overview.Completed)
	assert.Equal(t, 3, tree.Overview.Total)
	assert.Equal(t, 0.0, tree.Overview.Percent)
}

func TestRenderTiles(t *testing.T) {
	doc := mustParse(t, linuxDoc)
	progress := store.Progress{}
	progress.Set("linux_basics", 1)

	tree := Render(doc, progress, NewAccents())
	card := tree.Cards[0]

	assert.Equal(t, "LINUX BASICS", card.Title)
	assert.Equal(t, 1, card.Completed)
	assert.Equal(t, 2, card.Total)
	require.Len(t, card.Tiles, 2)

	assert.Equal(t, Tile{TopicKey: "linux_basics", Index: 0, Number: 1, Label: "Shell", ProgressKey: "linux_basics_0"}, card.Tiles[0])
	assert.True(t, card.Tiles[1].Completed)
	assert.Equal(t, 2, card.Tiles[1].Number)
}

func TestRenderNavMatchesCards(t *testing.T) {
	doc := mustParse(t, `{"linux_basics":[{"topic":"x"}],"git":[{"topic":"y"}]}`)
	tree := Render(doc, store.Progress{}, NewAccents())

	require.Len(t, tree.Nav, 2)
	assert.Equal(t, "Linux Basics", tree.Nav[0].Label)
	assert.Equal(t, "git", tree.Nav[1].TopicKey)
	for i := range tree.Nav {
		assert.Equal(t, tree.Cards[i].Accent, tree.Nav[i].Accent)
	}
	assert.Equal(t, Palette[0], tree.Nav[0].Accent)
	assert.Equal(t, Palette[1], tree.Nav[1].Accent)
}

func TestRenderEmptyDocument(t *testing.T) {
	tree := Render(mustParse(t, `{}`), store.Progress{}, NewAccents())

	require.NotNil(t, tree.Empty)
	assert.Equal(t, EmptyTitle, tree.Empty.Title)
	assert.Equal(t, EmptyHint, tree.Empty.Hint)
	assert.NotNil(t, tree.Nav)
	assert.Empty(t, tree.Nav)
	assert.Empty(t, tree.Cards)
	assert.Equal(t, 0.0, tree.Overview.Percent)
}

func TestRenderNilAccents(t *testing.T) {
	tree := Render(mustParse(t, linuxDoc), store.Progress{}, nil)
	assert.Equal(t, Palette[0], tree.Cards[0].Accent)
}

func TestSummarizeScenario(t *testing.T) {
	doc := mustParse(t, linuxDoc)
	progress := store.Progress{}
	progress.Set("linux_basics", 0)

	o := Summarize(doc, progress)
	assert.Equal(t, 1, o.Completed)
	assert.Equal(t, 2, o.Total)
	assert.Equal(t, 50.0, o.Percent)
	assert.Equal(t, 0.5, o.Fraction())
}

func TestSummarizeCountsStaleEntries(t *testing.T) {
	doc := mustParse(t, linuxDoc)
	progress := store.Progress{"old_topic_0": true, "old_topic_1": true, "old_topic_2": true}

	o := Summarize(doc, progress)
	assert.Equal(t, 3, o.Completed)
	assert.Equal(t, 150.0, o.Percent)
	assert.Equal(t, 1.0, o.Fraction())
}

func TestTopicCompletionIgnoresStaleEntries(t *testing.T) {
	doc := mustParse(t, linuxDoc)
	progress := store.Progress{"old_topic_0": true}
	progress.Set("linux_basics", 0)

	stats := TopicCompletion(doc, progress, nil)
	require.Len(t, stats, 1)
	assert.Equal(t, 1, stats[0].Completed)
	assert.Equal(t, 50.0, stats[0].Percent())
}

// ============================================================
// Accents
// ============================================================

func TestAccentsFirstSeenOrder(t *testing.T) {
	a := NewAccents()
	assert.Equal(t, Palette[0], a.For("x"))
	assert.Equal(t, Palette[1], a.For("y"))
	assert.Equal(t, Palette[0], a.For("x"))
	assert.Equal(t, 2, a.Len())
}

func TestAccentsWrapAround(t *testing.T) {
	a := NewAccents()
	for i := 0; i < len(Palette); i++ {
		a.For(string(rune('a' + i)))
	}
	assert.Equal(t, Palette[0], a.For("overflow"))
}

func TestAccentsReset(t *testing.T) {
	a := NewAccents()
	a.For("x")
	a.For("y")
	a.Reset()
	assert.Equal(t, Palette[0], a.For("y"))
}

func TestAccentsStableAcrossRenders(t *testing.T) {
	a := NewAccents()
	doc := mustParse(t, `{"a":[],"b":[]}`)
	first := Render(doc, store.Progress{}, a)
	second := Render(doc, store.Progress{}, a)
	assert.Equal(t, first.Nav, second.Nav)
}

// ============================================================
// Detail panel
// ============================================================

func TestOpenDetailFullRecord(t *testing.T) {
	doc := mustParse(t, `{"k8s":[{"topic":"Pods","description":"Smallest unit","subtopics":["spec","status"],"start_date":"2025-02-01","end_date":"2025-02-03","estimated_time":"3h","status":"done"}]}`)
	progress := store.Progress{}
	progress.Set("k8s", 0)

	d, ok := OpenDetail(doc, progress, "k8s", 0)
	require.True(t, ok)
	assert.Equal(t, "K8S", d.Title)
	assert.Equal(t, "Item 1", d.ItemLabel)
	assert.Equal(t, "Smallest unit", d.Description)
	assert.Equal(t, []string{"spec", "status"}, d.Items)
	assert.Equal(t, "2025-02-01", d.StartDate)
	assert.Equal(t, "2025-02-03", d.EndDate)
	assert.Equal(t, "3h", d.EstimatedTime)
	assert.Equal(t, "done", d.Status)
	assert.True(t, d.Completed)
	assert.Equal(t, "k8s_0", d.ProgressKey)
}

func TestOpenDetailFallbacks(t *testing.T) {
	doc := mustParse(t, `{"t":[{"topic":"Only a label"},{"other":1}]}`)

	d, ok := OpenDetail(doc, store.Progress{}, "t", 0)
	require.True(t, ok)
	assert.Equal(t, "Only a label", d.Description)
	assert.Equal(t, []string{"Only a label"}, d.Items)
	assert.Equal(t, Placeholder, d.StartDate)
	assert.Equal(t, Placeholder, d.EndDate)
	assert.Equal(t, Placeholder, d.EstimatedTime)
	assert.Equal(t, Placeholder, d.Status)
	assert.False(t, d.Completed)

	d, ok = OpenDetail(doc, store.Progress{}, "t", 1)
	require.True(t, ok)
	assert.Equal(t, "Item 2", d.ItemLabel)
	assert.Equal(t, NoDescription, d.Description)
	assert.Empty(t, d.Items)
}

func TestOpenDetailExplicitEmptyItems(t *testing.T) {
	doc := mustParse(t, `{"t":[{"topic":"x","subtopics":[]}]}`)
	d, ok := OpenDetail(doc, store.Progress{}, "t", 0)
	require.True(t, ok)
	assert.Empty(t, d.Items)
}

func TestOpenDetailOutOfRange(t *testing.T) {
	doc := mustParse(t, linuxDoc)
	_, ok := OpenDetail(doc, store.Progress{}, "linux_basics", 2)
	assert.False(t, ok)
	_, ok = OpenDetail(doc, store.Progress{}, "linux_basics", -1)
	assert.False(t, ok)
	_, ok = OpenDetail(doc, store.Progress{}, "missing", 0)
	assert.False(t, ok)
}
