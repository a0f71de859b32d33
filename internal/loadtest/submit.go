package loadtest

import (
	"context"
	"sync"

	"github.com/okian/mergington/pkg/logger"
)

type result struct {
	signup  Signup
	outcome outcome
}

// fanOut runs call for every signup across workers and collects outcomes.
func fanOut(ctx context.Context, config *Config, signups []Signup,
	call func(context.Context, Signup) (outcome, error),
) []result {
	in := make(chan Signup, config.Workers*2)
	out := make(chan result, len(signups))

	var wg sync.WaitGroup
	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for s := range in {
				o, err := call(ctx, s)
				if err != nil && config.Verbose {
					logger.Get().Warn(ctx, "request failed", logger.String("activity", s.Activity), logger.Error(err))
				}
				out <- result{signup: s, outcome: o}
			}
		}()
	}

	go func() {
		defer close(in)
		for _, s := range signups {
			select {
			case <-ctx.Done():
				return
			case in <- s:
			}
		}
	}()

	wg.Wait()
	close(out)

	results := make([]result, 0, len(signups))
	for r := range out {
		results = append(results, r)
	}
	return results
}

func count(results []result, want outcome) int {
	n := 0
	for _, r := range results {
		if r.outcome == want {
			n++
		}
	}
	return n
}

func accepted(results []result) []Signup {
	out := make([]Signup, 0, len(results))
	for _, r := range results {
		if r.outcome == outcomeOK {
			out = append(out, r.signup)
		}
	}
	return out
}
