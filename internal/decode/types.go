package decode

// #region entity
// Entity is one named slot captured between a begin/end marker pair.
type Entity struct {
	Entity string `json:"entity"`
	Value  string `json:"value"`
}

// #endregion entity

// #region intent
// IntentMeta names the recognized intent and its share of probability mass.
type IntentMeta struct {
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
}

// Intent is one structured recognition result. The JSON shape matches the
// reference recognizer output consumed by downstream handlers.
type Intent struct {
	Text     string     `json:"text"`
	Intent   IntentMeta `json:"intent"`
	Entities []Entity   `json:"entities"`
	Tokens   []string   `json:"tokens"`
}

// Empty returns a zero-confidence intent with non-nil slices, so it
// serializes as [] rather than null.
func Empty() Intent {
	return Intent{
		Entities: []Entity{},
		Tokens:   []string{},
	}
}

// #endregion intent
