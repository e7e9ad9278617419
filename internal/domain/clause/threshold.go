package clause

import (
	"strings"

	"github.com/turtacn/ClauseLens/pkg/types/contract"
)

// Sensitivity names a threshold profile.
type Sensitivity string

const (
	SensitivityConservative Sensitivity = "conservative"
	SensitivityBalanced     Sensitivity = "balanced"
	SensitivityAggressive   Sensitivity = "aggressive"
)

// Profile holds the cut points of a sensitivity profile.
type Profile struct {
	Name        Sensitivity `json:"name"`
	Label       string      `json:"label"`
	Description string      `json:"description"`
	High        int         `json:"high"`
	Medium      int         `json:"medium"`
}

// The aggressive profile has the highest cut points and therefore flags the
// fewest clauses, yet a score of 65 still lands in its medium band.
var profiles = []Profile{
	{
		Name:        SensitivityConservative,
		Label:       "Conservative",
		Description: "Flag more clauses as risky. Best for high-stakes contracts.",
		High:        60,
		Medium:      30,
	},
	{
		Name:        SensitivityBalanced,
		Label:       "Balanced",
		Description: "Standard risk assessment. Recommended for most contracts.",
		High:        70,
		Medium:      40,
	},
	{
		Name:        SensitivityAggressive,
		Label:       "Aggressive",
		Description: "Only flag clearly risky clauses. For routine contracts.",
		High:        80,
		Medium:      50,
	},
}

// Profiles returns every profile, most sensitive first.
func Profiles() []Profile {
	out := make([]Profile, len(profiles))
	copy(out, profiles)
	return out
}

// LookupProfile finds a profile by name, case-insensitively.
func LookupProfile(name string) (Profile, bool) {
	want := Sensitivity(strings.ToLower(strings.TrimSpace(name)))
	for _, p := range profiles {
		if p.Name == want {
			return p, true
		}
	}
	return Profile{}, false
}

// ProfileOrDefault returns the named profile, falling back to balanced.
func ProfileOrDefault(name string) Profile {
	if p, ok := LookupProfile(name); ok {
		return p
	}
	return profiles[1]
}

// ApplyThreshold bands a score under a sensitivity profile. Unknown profile
// names use balanced. The result only filters what is displayed.
func ApplyThreshold(score int, profile string) contract.RiskLevel {
	p := ProfileOrDefault(profile)
	switch {
	case score >= p.High:
		return contract.RiskHigh
	case score >= p.Medium:
		return contract.RiskMedium
	default:
		return contract.RiskLow
	}
}
