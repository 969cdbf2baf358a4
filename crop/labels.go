package crop

// UnknownCrop is reported for class ids the label map does not cover.
const UnknownCrop = "Unknown"

// LabelMap resolves classifier output ids to crop names. It is never mutated
// after construction and is safe for concurrent reads.
type LabelMap struct {
	names map[int]string
}

// NewLabelMap copies names into a new immutable map.
func NewLabelMap(names map[int]string) LabelMap {
	copied := make(map[int]string, len(names))
	for id, name := range names {
		copied[id] = name
	}
	return LabelMap{names: copied}
}

// DefaultLabels returns the 22 crops the bundled model was trained on.
func DefaultLabels() LabelMap {
	return NewLabelMap(map[int]string{
		1: "Rice", 2: "Maize", 3: "Jute", 4: "Cotton", 5: "Coconut",
		6: "Papaya", 7: "Orange", 8: "Apple", 9: "Muskmelon", 10: "Watermelon",
		11: "Grapes", 12: "Mango", 13: "Banana", 14: "Pomegranate", 15: "Lentil",
		16: "Blackgram", 17: "Mungbean", 18: "Mothbeans", 19: "Pigeonpeas",
		20: "Kidneybeans", 21: "Chickpea", 22: "Coffee",
	})
}

func (m LabelMap) Lookup(id int) (string, bool) {
	name, ok := m.names[id]
	return name, ok
}

// NameOr returns the crop for id, or fallback when id is not mapped.
func (m LabelMap) NameOr(id int, fallback string) string {
	if name, ok := m.names[id]; ok {
		return name
	}
	return fallback
}

func (m LabelMap) Name(id int) string {
	return m.NameOr(id, UnknownCrop)
}

func (m LabelMap) Len() int {
	return len(m.names)
}
