package constants

import "strings"

// Strategy selects how discharge summaries are extracted.
type Strategy string

const (
	StrategyAuto  Strategy = "auto"
	StrategyAI    Strategy = "ai"
	StrategyRegex Strategy = "regex"
)

func ParseStrategy(s string) (Strategy, bool) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case StrategyAuto, "":
		return StrategyAuto, true
	case StrategyAI:
		return StrategyAI, true
	case StrategyRegex:
		return StrategyRegex, true
	}
	return "", false
}
