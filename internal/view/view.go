// Package view projects a learning path and its progress into a display tree.
// Nothing here touches a terminal; the tui package applies the tree.
package view

import (
	"strconv"

	"github.com/sadopc/pathtrack/internal/curriculum"
	"github.com/sadopc/pathtrack/internal/store"
)

const (
	EmptyTitle    = "No learning path loaded"
	EmptyHint     = "Import a JSON file or load the default path."
	NoDescription = "No description available"
	Placeholder   = "—"
)

type DisplayTree struct {
	Cards    []Card
	Nav      []NavEntry
	Empty    *EmptyState
	Overview Overview
}

type Card struct {
	TopicKey  string
	Title     string
	Accent    string
	Tiles     []Tile
	Completed int
	Total     int
}

type Tile struct {
	TopicKey    string
	Index       int
	Number      int
	Label       string
	Completed   bool
	ProgressKey string
}

type NavEntry struct {
	TopicKey string
	Label    string
	Accent   string
}

type EmptyState struct {
	Title string
	Hint  string
}

type Overview struct {
	Completed int
	Total     int
	Percent   float64
}

// Fraction is Percent as a 0..1 value clamped for progress bars.
func (o Overview) Fraction() float64 {
	f := o.Percent / 100
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

// Render builds the display tree. accents may be nil, in which case a
// throwaway assignment is used.
func Render(doc curriculum.Document, progress store.Progress, accents *Accents) DisplayTree {
	if accents == nil {
		accents = NewAccents()
	}

	tree := DisplayTree{
		Nav:      make([]NavEntry, 0, doc.Len()),
		Overview: Summarize(doc, progress),
	}
	if doc.IsEmpty() {
		tree.Empty = &EmptyState{Title: EmptyTitle, Hint: EmptyHint}
		return tree
	}

	for _, topic := range doc.Topics {
		accent := accents.For(topic.Key)
		card := Card{
			TopicKey: topic.Key,
			Title:    topic.Name(),
			Accent:   accent,
			Total:    len(topic.Subtopics),
			Tiles:    make([]Tile, 0, len(topic.Subtopics)),
		}
		for i, sub := range topic.Subtopics {
			done := progress.Has(topic.Key, i)
			if done {
				card.Completed++
			}
			card.Tiles = append(card.Tiles, Tile{
				TopicKey:    topic.Key,
				Index:       i,
				Number:      i + 1,
				Label:       sub.Topic,
				Completed:   done,
				ProgressKey: store.ProgressKey(topic.Key, i),
			})
		}
		tree.Cards = append(tree.Cards, card)
		tree.Nav = append(tree.Nav, NavEntry{
			TopicKey: topic.Key,
			Label:    topic.NavLabel(),
			Accent:   accent,
		})
	}
	return tree
}

// Summarize counts every stored entry as completed, including entries left
// over from another document.
func Summarize(doc curriculum.Document, progress store.Progress) Overview {
	o := Overview{
		Completed: progress.Len(),
		Total:     doc.Total(),
	}
	if o.Total > 0 {
		o.Percent = float64(o.Completed) / float64(o.Total) * 100
	}
	return o
}

type TopicStat struct {
	TopicKey  string
	Label     string
	Accent    string
	Completed int
	Total     int
}

func (s TopicStat) Percent() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Completed) / float64(s.Total) * 100
}

// TopicCompletion reports completion per topic, counting only entries that
// reference the topic's current items.
func TopicCompletion(doc curriculum.Document, progress store.Progress, accents *Accents) []TopicStat {
	if accents == nil {
		accents = NewAccents()
	}
	stats := make([]TopicStat, 0, doc.Len())
	for _, topic := range doc.Topics {
		s := TopicStat{
			TopicKey: topic.Key,
			Label:    topic.NavLabel(),
			Accent:   accents.For(topic.Key),
			Total:    len(topic.Subtopics),
		}
		for i := range topic.Subtopics {
			if progress.Has(topic.Key, i) {
				s.Completed++
			}
		}
		stats = append(stats, s)
	}
	return stats
}

type DetailView struct {
	TopicKey      string
	Index         int
	Title         string
	ItemLabel     string
	Description   string
	Items         []string
	StartDate     string
	EndDate       string
	EstimatedTime string
	Status        string
	Completed     bool
	ProgressKey   string
}

// OpenDetail resolves the detail panel for one subtopic. Optional fields fall
// back in a fixed order: description, then label, then NoDescription; explicit
// sub-items, then the label alone; scalar fields to Placeholder.
func OpenDetail(doc curriculum.Document, progress store.Progress, topicKey string, index int) (DetailView, bool) {
	topic, ok := doc.Lookup(topicKey)
	if !ok || index < 0 || index >= len(topic.Subtopics) {
		return DetailView{}, false
	}
	sub := topic.Subtopics[index]

	d := DetailView{
		TopicKey:      topicKey,
		Index:         index,
		Title:         topic.Name(),
		ItemLabel:     "Item " + strconv.Itoa(index+1),
		Description:   firstNonEmpty(sub.Description, sub.Topic, NoDescription),
		StartDate:     firstNonEmpty(sub.StartDate, Placeholder),
		EndDate:       firstNonEmpty(sub.EndDate, Placeholder),
		EstimatedTime: firstNonEmpty(sub.EstimatedTime, Placeholder),
		Status:        firstNonEmpty(sub.Status, Placeholder),
		Completed:     progress.Has(topicKey, index),
		ProgressKey:   store.ProgressKey(topicKey, index),
	}

	switch {
	case sub.Subtopics != nil:
		d.Items = append([]string(nil), sub.Subtopics...)
	case sub.Topic != "":
		d.Items = []string{sub.Topic}
	default:
		d.Items = []string{}
	}
	return d, true
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
