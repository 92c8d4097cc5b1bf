// Package ai implements the difficulty-parameterized controller that drives a
// non-human combatant.
package ai

import "fmt"

// Tier is an AI difficulty level.
type Tier string

const (
	Easy   Tier = "easy"
	Medium Tier = "medium"
	Hard   Tier = "hard"
)

// Params holds the tuning values selected by a Tier.
type Params struct {
	// DecisionDelay is the number of ticks between strategy re-evaluations.
	DecisionDelay int
	// HealthThreshold is the health below which the AI seeks a pickup.
	HealthThreshold int
	// Accuracy is the probability of steering toward the true opponent direction.
	Accuracy float64
	// AttackDelay is the reaction time in ticks between issued attacks.
	AttackDelay int
	// MoveFactor scales the combatant's speed while steering.
	MoveFactor float64
}

var tierParams = map[Tier]Params{
	Easy:   {DecisionDelay: 60, HealthThreshold: 30, Accuracy: 0.6, AttackDelay: 45, MoveFactor: 0.7},
	Medium: {DecisionDelay: 30, HealthThreshold: 50, Accuracy: 0.8, AttackDelay: 25, MoveFactor: 1.0},
	Hard:   {DecisionDelay: 15, HealthThreshold: 70, Accuracy: 1.0, AttackDelay: 10, MoveFactor: 1.0},
}

// Tiers returns every tier from easiest to hardest.
func Tiers() []Tier { return []Tier{Easy, Medium, Hard} }

// ParseTier converts a configuration string into a Tier.
//
// Postcondition: returns an error for any value other than "easy", "medium", "hard".
func ParseTier(s string) (Tier, error) {
	t := Tier(s)
	if _, ok := tierParams[t]; !ok {
		return "", fmt.Errorf("ai: unknown tier %q", s)
	}
	return t, nil
}

// Params returns the tuning values for t. Unknown tiers fall back to Medium.
func (t Tier) Params() Params {
	if p, ok := tierParams[t]; ok {
		return p
	}
	return tierParams[Medium]
}

// String returns the tier name.
func (t Tier) String() string { return string(t) }
