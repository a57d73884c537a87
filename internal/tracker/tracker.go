// Package tracker holds the application state and the handlers that mutate it.
// Handlers operate on an explicit *State; there is no package-level state.
package tracker

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/sadopc/pathtrack/internal/curriculum"
	"github.com/sadopc/pathtrack/internal/export"
	"github.com/sadopc/pathtrack/internal/logging"
	"github.com/sadopc/pathtrack/internal/store"
	"github.com/sadopc/pathtrack/internal/view"
)

// ResetPrompt is shown by the confirmation gate before progress is cleared.
const ResetPrompt = "Are you sure you want to reset all progress? This cannot be undone."

var ErrUnknownItem = errors.New("no such subtopic in the loaded learning path")

// ImportParseError reports an import file that could not be read or decoded.
type ImportParseError struct {
	Path string
	Err  error
}

func (e *ImportParseError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("import %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("import: %v", e.Err)
}

func (e *ImportParseError) Unwrap() error { return e.Err }

// Store is the persistence the handlers need.
type Store interface {
	GetTheme() store.Theme
	SetTheme(store.Theme) error
	GetProgress() (store.Progress, error)
	SetProgress(store.Progress) error
}

// Confirmer is a blocking yes/no gate.
type Confirmer func(prompt string) bool

// State is everything the renderer reads and the handlers write.
type State struct {
	Document curriculum.Document
	Progress store.Progress
	Theme    store.Theme
	Accents  *view.Accents

	generation uint64
}

func NewState() *State {
	return &State{
		Progress: store.Progress{},
		Theme:    store.ThemeLight,
		Accents:  view.NewAccents(),
	}
}

// Generation is the id of the most recently started load.
func (st *State) Generation() uint64 { return st.generation }

type Tracker struct {
	store Store
	log   zerolog.Logger
	now   func() time.Time
}

func New(s Store) *Tracker {
	return &Tracker{
		store: s,
		log:   logging.Component("tracker"),
		now:   time.Now,
	}
}

// Init reads the theme and progress from the store. A corrupt progress value
// leaves st with empty progress and is returned for display.
func (t *Tracker) Init(st *State) error {
	st.Theme = t.store.GetTheme()
	return t.reloadProgress(st)
}

func (t *Tracker) reloadProgress(st *State) error {
	p, err := t.store.GetProgress()
	if p == nil {
		p = store.Progress{}
	}
	st.Progress = p
	if err != nil {
		t.log.Warn().Err(err).Msg("stored progress unreadable, starting empty")
	}
	return err
}

// BeginLoad starts a new load and returns its generation. Only the document
// of the latest generation is ever applied.
func (t *Tracker) BeginLoad(st *State) uint64 {
	st.generation++
	return st.generation
}

// ApplyDocument replaces the learning path if gen is still current. It
// reports whether the document was applied; the error is a progress decode
// failure, which does not prevent the apply.
func (t *Tracker) ApplyDocument(st *State, gen uint64, doc curriculum.Document) (bool, error) {
	if gen != st.generation {
		t.log.Debug().Uint64("gen", gen).Uint64("current", st.generation).Msg("stale document discarded")
		return false, nil
	}
	st.Document = doc
	st.Accents.Reset()
	err := t.reloadProgress(st)
	t.log.Info().Int("topics", doc.Len()).Int("subtopics", doc.Total()).Msg("learning path applied")
	return true, err
}

// SetComplete marks one subtopic complete or incomplete and persists at once.
func (t *Tracker) SetComplete(st *State, topicKey string, index int, done bool) error {
	if _, ok := st.Document.Subtopic(topicKey, index); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownItem, store.ProgressKey(topicKey, index))
	}
	if done {
		st.Progress.Set(topicKey, index)
	} else {
		st.Progress.Clear(topicKey, index)
	}
	if err := t.store.SetProgress(st.Progress); err != nil {
		t.log.Error().Err(err).Msg("persist progress")
		return err
	}
	return nil
}

// Toggle flips one subtopic and returns its new state.
func (t *Tracker) Toggle(st *State, topicKey string, index int) (bool, error) {
	done := !st.Progress.Has(topicKey, index)
	if err := t.SetComplete(st, topicKey, index, done); err != nil {
		return !done, err
	}
	return done, nil
}

// Reset clears all progress once confirm agrees. It reports whether anything
// was reset.
func (t *Tracker) Reset(st *State, confirm Confirmer) (bool, error) {
	if confirm == nil || !confirm(ResetPrompt) {
		return false, nil
	}
	st.Progress = store.Progress{}
	if err := t.store.SetProgress(st.Progress); err != nil {
		t.log.Error().Err(err).Msg("persist reset")
		return true, err
	}
	t.log.Info().Msg("progress reset")
	return true, nil
}

// ParseImport decodes an import file's contents without touching any state.
func (t *Tracker) ParseImport(data []byte) (curriculum.Document, error) {
	doc, err := curriculum.Parse(data)
	if err != nil {
		return curriculum.Document{}, &ImportParseError{Err: err}
	}
	return doc, nil
}

// Import replaces the learning path with the decoded data. On a parse error
// the state is left as it was.
func (t *Tracker) Import(st *State, data []byte) error {
	doc, err := t.ParseImport(data)
	if err != nil {
		t.log.Warn().Err(err).Msg("import rejected")
		return err
	}
	_, err = t.ApplyDocument(st, t.BeginLoad(st), doc)
	return err
}

// ReadImport reads and decodes an import file without touching any state.
func (t *Tracker) ReadImport(path string) (curriculum.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return curriculum.Document{}, &ImportParseError{Path: path, Err: err}
	}
	doc, err := t.ParseImport(data)
	if err != nil {
		var perr *ImportParseError
		if errors.As(err, &perr) {
			perr.Path = path
		}
		return curriculum.Document{}, err
	}
	return doc, nil
}

func (t *Tracker) ImportFile(st *State, path string) error {
	doc, err := t.ReadImport(path)
	if err != nil {
		t.log.Warn().Err(err).Str("path", path).Msg("import rejected")
		return err
	}
	_, err = t.ApplyDocument(st, t.BeginLoad(st), doc)
	return err
}

type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatPDF  Format = "pdf"
)

var Formats = []Format{FormatJSON, FormatCSV, FormatPDF}

func ParseFormat(s string) (Format, error) {
	for _, f := range Formats {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown export format %q (want json, csv or pdf)", s)
}

// ExportAs writes the learning path in the given format. It never mutates st.
func (t *Tracker) ExportAs(st *State, format Format, dir string) (string, error) {
	now := t.now()
	var (
		path string
		err  error
	)
	switch format {
	case FormatJSON:
		path, err = export.ToJSON(st.Document, st.Progress, now, dir)
	case FormatCSV:
		path, err = export.ToCSV(st.Document, st.Progress, now, dir)
	case FormatPDF:
		path, err = export.ToPDF(st.Document, st.Progress, now, dir)
	default:
		_, err = ParseFormat(string(format))
	}
	if err != nil {
		t.log.Error().Err(err).Str("format", string(format)).Msg("export failed")
		return "", err
	}
	t.log.Info().Str("path", path).Msg("exported")
	return path, nil
}

// ToggleTheme flips the theme and persists it.
func (t *Tracker) ToggleTheme(st *State) (store.Theme, error) {
	next := st.Theme.Toggle()
	return next, t.SetTheme(st, next)
}

func (t *Tracker) SetTheme(st *State, theme store.Theme) error {
	st.Theme = theme
	if err := t.store.SetTheme(theme); err != nil {
		t.log.Error().Err(err).Msg("persist theme")
		return err
	}
	return nil
}

func (t *Tracker) Overview(st *State) view.Overview {
	return view.Summarize(st.Document, st.Progress)
}

func (t *Tracker) Render(st *State) view.DisplayTree {
	return view.Render(st.Document, st.Progress, st.Accents)
}

func (t *Tracker) Detail(st *State, topicKey string, index int) (view.DetailView, bool) {
	return view.OpenDetail(st.Document, st.Progress, topicKey, index)
}

func (t *Tracker) TopicStats(st *State) []view.TopicStat {
	return view.TopicCompletion(st.Document, st.Progress, st.Accents)
}
