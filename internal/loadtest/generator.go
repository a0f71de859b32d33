package loadtest

import (
	"sort"

	"github.com/google/uuid"
)

const emailDomain = "@loadtest.mergington.edu"

// generateSignups spreads n unique emails round-robin over activities.
func generateSignups(activities map[string]Activity, n int) []Signup {
	names := make([]string, 0, len(activities))
	for name := range activities {
		names = append(names, name)
	}
	sort.Strings(names)
	if len(names) == 0 {
		return nil
	}

	signups := make([]Signup, n)
	for i := range signups {
		signups[i] = Signup{
			Activity: names[i%len(names)],
			Email:    uuid.NewString() + emailDomain,
		}
	}
	return signups
}
