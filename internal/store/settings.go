package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// Setting keys.
const (
	KeyTheme          = "theme"
	KeyProgress       = "learningProgress"
	KeyDocumentSource = "document_source"
)

// StoreDecodeError reports a persisted value that could not be decoded.
// Readers that return it also return a usable default.
type StoreDecodeError struct {
	Key string
	Err error
}

func (e *StoreDecodeError) Error() string {
	return fmt.Sprintf("decode setting %q: %v", e.Key, e.Err)
}

func (e *StoreDecodeError) Unwrap() error { return e.Err }

func (s *Store) GetSetting(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err != nil {
		return "", fmt.Errorf("get setting %q: %w", key, err)
	}
	return value, nil
}

func (s *Store) SetSetting(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("set setting %q: %w", key, err)
	}
	return nil
}

func (s *Store) DeleteSetting(key string) error {
	if _, err := s.db.Exec(`DELETE FROM settings WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete setting %q: %w", key, err)
	}
	return nil
}

func (s *Store) GetAllSettings() ([]Setting, error) {
	rows, err := s.db.Query(`SELECT key, value FROM settings ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	defer rows.Close()

	var settings []Setting
	for rows.Next() {
		var s Setting
		if err := rows.Scan(&s.Key, &s.Value); err != nil {
			return nil, err
		}
		settings = append(settings, s)
	}
	return settings, rows.Err()
}

// GetTheme returns the stored theme, light when unset or unreadable.
func (s *Store) GetTheme() Theme {
	v, err := s.GetSetting(KeyTheme)
	if err != nil {
		return ThemeLight
	}
	return ParseTheme(v)
}

func (s *Store) SetTheme(t Theme) error {
	return s.SetSetting(KeyTheme, string(ParseTheme(string(t))))
}

// GetProgress returns the stored progress mapping. A missing value yields an
// empty mapping. A corrupt value yields an empty mapping and a *StoreDecodeError.
func (s *Store) GetProgress() (Progress, error) {
	raw, err := s.GetSetting(KeyProgress)
	if errors.Is(err, sql.ErrNoRows) {
		return Progress{}, nil
	}
	if err != nil {
		return Progress{}, err
	}

	return DecodeProgress(raw)
}

// DecodeProgress parses a stored progress value, keeping only true entries.
func DecodeProgress(raw string) (Progress, error) {
	var decoded map[string]any
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return Progress{}, &StoreDecodeError{Key: KeyProgress, Err: err}
	}

	p := make(Progress, len(decoded))
	for k, v := range decoded {
		if b, ok := v.(bool); ok && b {
			p[k] = true
		}
	}
	return p, nil
}

func (s *Store) SetProgress(p Progress) error {
	data, err := json.Marshal(p.Clone())
	if err != nil {
		return fmt.Errorf("encode progress: %w", err)
	}
	return s.SetSetting(KeyProgress, string(data))
}

// GetDocumentSource returns the user's document source override, or "".
func (s *Store) GetDocumentSource() string {
	v, err := s.GetSetting(KeyDocumentSource)
	if err != nil {
		return ""
	}
	return v
}

// SetDocumentSource stores the override; an empty source removes it.
func (s *Store) SetDocumentSource(src string) error {
	if src == "" {
		return s.DeleteSetting(KeyDocumentSource)
	}
	return s.SetSetting(KeyDocumentSource, src)
}
