package curriculum

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sadopc/pathtrack/internal/logging"
)

// DefaultSource is the document loaded at startup when nothing else is configured.
const DefaultSource = "devops_learning_path.json"

const maxDocumentSize = 32 << 20

// LoadError reports a failed fetch, non-success response or undecodable document.
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load learning path from %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Loader fetches a document from a file path or an http(s) URL.
type Loader struct {
	Source string
	Client *http.Client

	log zerolog.Logger
}

func NewLoader(source string, timeout time.Duration) *Loader {
	if source == "" {
		source = DefaultSource
	}
	return &Loader{
		Source: source,
		Client: &http.Client{Timeout: timeout},
		log:    logging.Component("loader"),
	}
}

// Load reads and parses the document. Every failure is a *LoadError.
func (l *Loader) Load(ctx context.Context) (Document, error) {
	data, err := l.read(ctx)
	if err != nil {
		l.log.Warn().Err(err).Str("source", l.Source).Msg("fetch failed")
		return Document{}, &LoadError{Source: l.Source, Err: err}
	}

	doc, err := Parse(data)
	if err != nil {
		l.log.Warn().Err(err).Str("source", l.Source).Msg("decode failed")
		return Document{}, &LoadError{Source: l.Source, Err: err}
	}

	l.log.Info().
		Str("source", l.Source).
		Int("topics", doc.Len()).
		Int("subtopics", doc.Total()).
		Msg("learning path loaded")
	return doc, nil
}

func (l *Loader) read(ctx context.Context) ([]byte, error) {
	if !isURL(l.Source) {
		return os.ReadFile(l.Source)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.Source, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
