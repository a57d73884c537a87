package store

import "strconv"

// Theme is the persisted display mode.
type Theme string

const (
	ThemeLight Theme = "light-mode"
	ThemeDark  Theme = "dark-mode"
)

// ParseTheme maps a stored value to a Theme, falling back to light.
func ParseTheme(v string) Theme {
	if Theme(v) == ThemeDark {
		return ThemeDark
	}
	return ThemeLight
}

func (t Theme) Toggle() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

func (t Theme) IsDark() bool { return t == ThemeDark }

// Progress holds the completed items of a learning path, keyed by ProgressKey.
// Absence means incomplete; the map never holds false values.
type Progress map[string]bool

// ProgressKey builds the composite key for the subtopic at index within topicKey.
func ProgressKey(topicKey string, index int) string {
	return topicKey + "_" + strconv.Itoa(index)
}

func (p Progress) Has(topicKey string, index int) bool {
	return p[ProgressKey(topicKey, index)]
}

func (p Progress) Set(topicKey string, index int) {
	p[ProgressKey(topicKey, index)] = true
}

func (p Progress) Clear(topicKey string, index int) {
	delete(p, ProgressKey(topicKey, index))
}

func (p Progress) Len() int { return len(p) }

func (p Progress) Clone() Progress {
	out := make(Progress, len(p))
	for k, v := range p {
		if v {
			out[k] = true
		}
	}
	return out
}

type Setting struct {
	Key   string
	Value string
}
