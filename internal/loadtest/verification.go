package loadtest

import (
	"context"
	"fmt"

	"github.com/okian/mergington/pkg/logger"
)

// verifyRosters checks that every signup appears exactly want times (0 or 1)
// in its activity roster. It returns the number of mismatches.
func verifyRosters(ctx context.Context, client *HTTPClient, signups []Signup, want int) (int, error) {
	activities, err := client.Activities(ctx)
	if err != nil {
		return 0, fmt.Errorf("fetch rosters: %w", err)
	}

	counts := make(map[string]map[string]int, len(activities))
	for name, a := range activities {
		m := make(map[string]int, len(a.Participants))
		for _, email := range a.Participants {
			m[email]++
		}
		counts[name] = m
	}

	mismatches := 0
	for _, s := range signups {
		if got := counts[s.Activity][s.Email]; got != want {
			mismatches++
			logger.Get().Warn(ctx, "roster mismatch",
				logger.String("activity", s.Activity),
				logger.String("email", s.Email),
				logger.Int("want", want),
				logger.Int("got", got),
			)
		}
	}
	return mismatches, nil
}
