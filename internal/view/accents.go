package view

// Palette is the fixed set of topic accent colors.
var Palette = []string{
	"#2563eb", // blue
	"#16a34a", // green
	"#ea580c", // orange
	"#db2777", // pink
	"#7c3aed", // purple
	"#0891b2", // cyan
	"#b45309", // amber
	"#4b5563", // slate
}

// Accents assigns palette colors to topic keys in first-seen order and
// remembers them until Reset.
type Accents struct {
	assigned map[string]string
}

func NewAccents() *Accents {
	return &Accents{assigned: make(map[string]string)}
}

func (a *Accents) For(topicKey string) string {
	if a.assigned == nil {
		a.assigned = make(map[string]string)
	}
	if c, ok := a.assigned[topicKey]; ok {
		return c
	}
	c := Palette[len(a.assigned)%len(Palette)]
	a.assigned[topicKey] = c
	return c
}

func (a *Accents) Reset() {
	a.assigned = make(map[string]string)
}

func (a *Accents) Len() int { return len(a.assigned) }
