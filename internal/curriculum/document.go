// Package curriculum models a learning path document: an ordered mapping of
// topic keys to sequences of subtopic records.
package curriculum

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/buger/jsonparser"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// WrapperKey is the top-level key a document may be nested under, both in
// the default document and in exported files.
const WrapperKey = "devops_learning_path"

// Subtopic is one learning item. It has no identity beyond its position in
// the parent topic.
type Subtopic struct {
	Topic         string
	Description   string
	EstimatedTime string
	StartDate     string
	EndDate       string
	Status        string
	// Subtopics is nil when the record has no sub-item list.
	Subtopics []string

	raw json.RawMessage
}

type subtopicJSON struct {
	Topic         string   `json:"topic"`
	Description   string   `json:"description,omitempty"`
	EstimatedTime string   `json:"estimated_time,omitempty"`
	StartDate     string   `json:"start_date,omitempty"`
	EndDate       string   `json:"end_date,omitempty"`
	Status        string   `json:"status,omitempty"`
	Subtopics     []string `json:"subtopics,omitempty"`
}

// UnmarshalJSON never rejects a well-formed value: scalar fields accept strings,
// numbers and booleans, and a non-object element decodes as an empty record.
func (s *Subtopic) UnmarshalJSON(data []byte) error {
	var buf bytes.Buffer
	if err := json.Compact(&buf, data); err != nil {
		return err
	}
	*s = Subtopic{raw: buf.Bytes()}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil
	}

	s.Topic = textValue(fields["topic"])
	s.Description = textValue(fields["description"])
	s.EstimatedTime = textValue(fields["estimated_time"])
	s.StartDate = textValue(fields["start_date"])
	s.EndDate = textValue(fields["end_date"])
	s.Status = textValue(fields["status"])

	if items, ok := fields["subtopics"]; ok {
		var list []json.RawMessage
		if err := json.Unmarshal(items, &list); err == nil {
			s.Subtopics = make([]string, 0, len(list))
			for _, item := range list {
				s.Subtopics = append(s.Subtopics, textValue(item))
			}
		}
	}
	return nil
}

// MarshalJSON reproduces the decoded record verbatim, unknown fields included.
func (s Subtopic) MarshalJSON() ([]byte, error) {
	if s.raw != nil {
		return s.raw, nil
	}
	return json.Marshal(subtopicJSON{
		Topic:         s.Topic,
		Description:   s.Description,
		EstimatedTime: s.EstimatedTime,
		StartDate:     s.StartDate,
		EndDate:       s.EndDate,
		Status:        s.Status,
		Subtopics:     s.Subtopics,
	})
}

func textValue(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return ""
		}
		return s
	case '{', '[', 'n':
		return ""
	default:
		return string(raw)
	}
}

// Topic is a named group of subtopics.
type Topic struct {
	Key       string
	Subtopics []Subtopic
}

// Name is the card title: the key with underscores as spaces, upper-cased.
func (t Topic) Name() string {
	return strings.ToUpper(strings.ReplaceAll(t.Key, "_", " "))
}

// NavLabel is the title-cased name used in the navigation list.
func (t Topic) NavLabel() string {
	return cases.Title(language.Und).String(t.Name())
}

// Document is a learning path. Topics keep the order of the source object.
type Document struct {
	Topics []Topic
}

func (d Document) Len() int { return len(d.Topics) }

func (d Document) IsEmpty() bool { return len(d.Topics) == 0 }

// Total is the number of subtopics across all topics.
func (d Document) Total() int {
	n := 0
	for _, t := range d.Topics {
		n += len(t.Subtopics)
	}
	return n
}

func (d Document) Lookup(key string) (Topic, bool) {
	for _, t := range d.Topics {
		if t.Key == key {
			return t, true
		}
	}
	return Topic{}, false
}

// Subtopic returns the item at index within the topic key.
func (d Document) Subtopic(key string, index int) (Subtopic, bool) {
	t, ok := d.Lookup(key)
	if !ok || index < 0 || index >= len(t.Subtopics) {
		return Subtopic{}, false
	}
	return t.Subtopics[index], true
}

func (d Document) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, t := range d.Topics {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(t.Key)
		if err != nil {
			return nil, err
		}
		items := t.Subtopics
		if items == nil {
			items = []Subtopic{}
		}
		value, err := json.Marshal(items)
		if err != nil {
			return nil, fmt.Errorf("encode topic %q: %w", t.Key, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

var ErrNotObject = errors.New("document must be a JSON object")

// Parse decodes a document. A top-level WrapperKey holding an object is
// unwrapped; otherwise the whole object is the document. Values that are not
// arrays are skipped.
func Parse(data []byte) (Document, error) {
	if !json.Valid(data) {
		var v any
		err := json.Unmarshal(data, &v)
		return Document{}, fmt.Errorf("parse document: %w", err)
	}

	_, typ, _, err := jsonparser.Get(data)
	if err != nil {
		return Document{}, fmt.Errorf("parse document: %w", err)
	}
	if typ != jsonparser.Object {
		return Document{}, ErrNotObject
	}

	if inner, innerType, _, err := jsonparser.Get(data, WrapperKey); err == nil && innerType == jsonparser.Object {
		data = inner
	}
	return decodeObject(data)
}

// decodeObject keeps each key at its first position with its last value. A
// key whose last value is not an array is dropped.
func decodeObject(data []byte) (Document, error) {
	var order []string
	last := make(map[string][]byte)

	err := jsonparser.ObjectEach(data, func(key, value []byte, typ jsonparser.ValueType, _ int) error {
		k := string(key)
		if _, seen := last[k]; !seen {
			order = append(order, k)
		}
		if typ != jsonparser.Array {
			last[k] = nil
			return nil
		}
		last[k] = value
		return nil
	})
	if err != nil {
		return Document{}, fmt.Errorf("parse document: %w", err)
	}

	var doc Document
	for _, k := range order {
		value := last[k]
		if value == nil {
			continue
		}
		var items []Subtopic
		if err := json.Unmarshal(value, &items); err != nil {
			return Document{}, fmt.Errorf("parse document: topic %q: %w", k, err)
		}
		doc.Topics = append(doc.Topics, Topic{Key: k, Subtopics: items})
	}
	return doc, nil
}
