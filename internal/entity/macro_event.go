package entity

// MacroEvent is a detected mention of a macroeconomic indicator inside an
// item's text, with an estimated directional polarity on one currency.
type MacroEvent struct {
	Keyword  string  `json:"keyword"`
	Currency string  `json:"currency"`
	Signal   float64 `json:"signal"`
}
