package entity

// ClassificationKind tags how an item got its instrument label.
type ClassificationKind int

const (
	// ClassificationMatched means a configured keyword matched directly.
	ClassificationMatched ClassificationKind = iota
	// ClassificationFallback means the external topic classifier assigned
	// the label with sufficient confidence.
	ClassificationFallback
	// ClassificationUnclassified means no keyword matched and the topic
	// classifier declined or was unavailable.
	ClassificationUnclassified
)

// Classification is the tagged result of instrument assignment. Downstream
// code switches on Kind instead of comparing sentinel strings.
type Classification struct {
	Kind       ClassificationKind
	Instrument string
	Confidence float64
}

// Label returns the instrument label to attach to an item, collapsing the
// unclassified case onto the sentinel.
func (c Classification) Label() string {
	if c.Kind == ClassificationUnclassified {
		return InstrumentUnclassified
	}
	return c.Instrument
}
