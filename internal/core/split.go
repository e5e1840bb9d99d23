package core

import (
	"errors"

	"github.com/shopspring/decimal"
)

// SplitTolerance is the maximum allowed deviation of a split set's
// percentage sum from 100.
var SplitTolerance = decimal.New(1, -2) // 0.01

var hundred = decimal.New(100, 0)

var (
	ErrSplitSum        = errors.New("split percentages must sum to 100")
	ErrSplitNonMember  = errors.New("split references a user outside the household")
	ErrSplitPercentage = errors.New("split percentage must be in (0, 100]")
)

// SplitInput is one requested (user, percentage) share of a transaction.
type SplitInput struct {
	UserID     string
	Percentage decimal.Decimal
}

// ResolveSplits validates a requested split set against the household's
// current member IDs. An empty input yields a single 100% share for the
// acting user. A non-empty input must sum to 100 within SplitTolerance,
// reference only current members, and keep every percentage in (0, 100];
// it is returned exactly as given, never renormalized.
func ResolveSplits(input []SplitInput, actingUserID string, memberIDs []string) ([]SplitInput, error) {
	if len(input) == 0 {
		return []SplitInput{{UserID: actingUserID, Percentage: hundred}}, nil
	}

	sum := decimal.Zero
	for _, s := range input {
		sum = sum.Add(s.Percentage)
	}
	if sum.Sub(hundred).Abs().Cmp(SplitTolerance) > 0 {
		return nil, ErrSplitSum
	}

	members := make(map[string]bool, len(memberIDs))
	for _, id := range memberIDs {
		members[id] = true
	}

	resolved := make([]SplitInput, 0, len(input))
	for _, s := range input {
		if !members[s.UserID] {
			return nil, ErrSplitNonMember
		}
		if s.Percentage.Cmp(decimal.Zero) <= 0 || s.Percentage.Cmp(hundred) > 0 {
			return nil, ErrSplitPercentage
		}
		resolved = append(resolved, s)
	}

	return resolved, nil
}
