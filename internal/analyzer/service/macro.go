package service

import (
	"strings"

	"macrodesk/internal/analyzer/config"
	"macrodesk/internal/entity"
)

// Weak-positive signal assigned when a macro keyword is present but the text
// carries no directional language. The scheduled event itself is
// informationally non-neutral.
const defaultMacroSignal = 0.25

// MacroDetector scans item text for configured macro-event keywords and
// derives a signed impact estimate per detected event.
type MacroDetector struct {
	cfg *config.Config
}

// NewMacroDetector creates a new MacroDetector.
func NewMacroDetector(cfg *config.Config) *MacroDetector {
	return &MacroDetector{cfg: cfg}
}

// Detect emits one MacroEvent per configured keyword present in the text, in
// configuration order. Events are independent: no deduplication and no
// cross-keyword interaction.
func (d *MacroDetector) Detect(text string) []entity.MacroEvent {
	lowered := strings.ToLower(text)

	var events []entity.MacroEvent
	for _, mk := range d.cfg.Analyzer.MacroKeywords {
		if !strings.Contains(lowered, strings.ToLower(mk.Keyword)) {
			continue
		}
		events = append(events, entity.MacroEvent{
			Keyword:  mk.Keyword,
			Currency: mk.Currency,
			Signal:   d.phraseSignal(lowered),
		})
	}

	return events
}

// phraseSignal sums +1 per positive phrase occurrence and -1 per negative
// phrase occurrence, then clamps to [-1,1]. A zero sum yields the weak
// default signal.
func (d *MacroDetector) phraseSignal(lowered string) float64 {
	sum := 0
	for _, phrase := range d.cfg.Analyzer.PositivePhrases {
		sum += strings.Count(lowered, strings.ToLower(phrase))
	}
	for _, phrase := range d.cfg.Analyzer.NegativePhrases {
		sum -= strings.Count(lowered, strings.ToLower(phrase))
	}

	switch {
	case sum > 0:
		if sum > 1 {
			return 1.0
		}
		return float64(sum)
	case sum < 0:
		if sum < -1 {
			return -1.0
		}
		return float64(sum)
	default:
		return defaultMacroSignal
	}
}
