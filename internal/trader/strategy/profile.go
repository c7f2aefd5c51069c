package strategy

import (
	"strings"
	"unicode"
)

// Profile parameterizes the heuristic. Thresholds are fractional price moves.
type Profile struct {
	Name          string  `json:"name"`
	BuyThreshold  float64 `json:"buy_threshold"`
	SellThreshold float64 `json:"sell_threshold"`
	RiskTolerance float64 `json:"risk_tolerance"`
}

var (
	Aggressive   = Profile{Name: "aggressive", BuyThreshold: 0.05, SellThreshold: 0.10, RiskTolerance: 0.9}
	Balanced     = Profile{Name: "balanced", BuyThreshold: 0.10, SellThreshold: 0.08, RiskTolerance: 0.5}
	Conservative = Profile{Name: "conservative", BuyThreshold: 0.15, SellThreshold: 0.05, RiskTolerance: 0.2}
	Volatility   = Profile{Name: "volatility", BuyThreshold: 0.20, SellThreshold: 0.15, RiskTolerance: 0.8}
)

// Rotation is the order in which opponents are handed profiles.
func Rotation() []Profile {
	return []Profile{Conservative, Balanced, Aggressive, Volatility}
}

// ProfileByName looks up a preset, case-insensitively. Unknown names yield
// Balanced and false.
func ProfileByName(name string) (Profile, bool) {
	for _, p := range Rotation() {
		if strings.EqualFold(p.Name, strings.TrimSpace(name)) {
			return p, true
		}
	}
	return Balanced, false
}

// Title returns the profile name with a capital first letter, e.g. "Aggressive".
func (p Profile) Title() string {
	if p.Name == "" {
		return ""
	}
	r := []rune(p.Name)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
