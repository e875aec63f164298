package selection

import (
	"fmt"
	"time"
)

// MaxChoices bounds the ranked choice list of a preference.
const MaxChoices = 3

// Preference is one driver's ranked choices for one period. Choices is
// an ordered slice of route IDs with 1 ≤ len ≤ MaxChoices; position 0 is
// the first choice.
type Preference struct {
	ID                 string
	EmployeeID         string
	PeriodID           string
	Choices            []string
	ConfirmationNumber string
	SubmittedAt        time.Time
}

// Choice returns the k-th (1-based) choice, or "" if absent.
func (p *Preference) Choice(k int) string {
	if k < 1 || k > len(p.Choices) {
		return ""
	}
	return p.Choices[k-1]
}

// ValidateChoices checks a submitted choice list against the period. It
// returns ErrUnmetRequiredCount, ErrDuplicateChoice, or
// ErrRouteNotInCatalog (wrapped with the offending route) on violation.
func ValidateChoices(period *SelectionPeriod, choices []string) error {
	if len(choices) == 0 || len(choices) > MaxChoices {
		return fmt.Errorf("%w: got %d choices, want 1 to %d",
			ErrUnmetRequiredCount, len(choices), MaxChoices)
	}
	if len(choices) < period.RequiredSelections {
		return fmt.Errorf("%w: period requires %d, got %d",
			ErrUnmetRequiredCount, period.RequiredSelections, len(choices))
	}
	seen := make(map[string]struct{}, len(choices))
	for _, id := range choices {
		if id == "" {
			return fmt.Errorf("%w: empty route id in choice list", ErrRouteNotInCatalog)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: route %s listed twice", ErrDuplicateChoice, id)
		}
		seen[id] = struct{}{}

		if !period.InCatalog(id) {
			return fmt.Errorf("%w: route %s", ErrRouteNotInCatalog, id)
		}
	}
	return nil
}
