// Package loadtest drives concurrent signups and removals against a running
// activities service and verifies that no roster entry is lost or duplicated.
package loadtest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/mergington/pkg/logger"
)

// ErrInconsistent reports that the service rosters disagree with the
// requests it acknowledged.
var ErrInconsistent = errors.New("roster inconsistency detected")

const (
	directoryPermission = 0o750
	filePermission      = 0o600
)

// Run executes the complete load and consistency check.
func Run(ctx context.Context, config *Config) (*Stats, error) {
	log := logger.Get().Named("loadtest")
	stats := &Stats{StartTime: time.Now()}
	if config.Workers < 1 {
		config.Workers = 1
	}
	client := newHTTPClient(config.BaseURL, config.Timeout)

	log.Info(ctx, "starting signup load test",
		logger.String("baseURL", config.BaseURL),
		logger.Int("signups", config.NumSignups),
		logger.Int("workers", config.Workers),
		logger.Duration("timeout", config.Timeout),
	)

	// Step 1: Check service health
	if err := client.Health(ctx); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Generate signups over the live activity set
	activities, err := client.Activities(ctx)
	if err != nil {
		return stats, fmt.Errorf("activity discovery failed: %w", err)
	}
	signups := generateSignups(activities, config.NumSignups)
	stats.SignupsGenerated = len(signups)
	if len(signups) == 0 {
		return stats, errors.New("no activities to sign up for")
	}

	// Step 3: Sign everyone up concurrently
	results := fanOut(ctx, config, signups, client.Signup)
	stats.SignupsAccepted = count(results, outcomeOK)
	stats.SignupsFull = count(results, outcomeFull)
	stats.SignupsFailed = count(results, outcomeFailed) + count(results, outcomeRefused)
	enrolled := accepted(results)
	log.Info(ctx, "signups submitted",
		logger.Int("accepted", stats.SignupsAccepted),
		logger.Int("full", stats.SignupsFull),
		logger.Int("failed", stats.SignupsFailed),
	)

	// Step 4: Every accepted signup must now be refused as a duplicate
	dupes := fanOut(ctx, config, enrolled, client.Signup)
	stats.DuplicatesRefused = count(dupes, outcomeRefused)

	// Step 5: Every accepted email is listed exactly once
	mismatches, err := verifyRosters(ctx, client, enrolled, 1)
	if err != nil {
		return stats, err
	}
	stats.Mismatches += mismatches

	// Step 6: Remove everyone, then confirm a second removal is refused
	removals := fanOut(ctx, config, enrolled, client.Remove)
	stats.RemovalsAccepted = count(removals, outcomeOK)
	again := fanOut(ctx, config, enrolled, client.Remove)
	stats.RemovalsRefused = count(again, outcomeRefused)

	// Step 7: No generated email is left behind
	mismatches, err = verifyRosters(ctx, client, signups, 0)
	if err != nil {
		return stats, err
	}
	stats.Mismatches += mismatches

	if config.OutputFile != "" {
		if err := saveSignups(config.OutputFile, signups); err != nil {
			log.Warn(ctx, "failed to save signups to file", logger.Error(err))
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, log, stats)

	if stats.Mismatches > 0 ||
		stats.DuplicatesRefused != len(enrolled) ||
		stats.RemovalsAccepted != len(enrolled) ||
		stats.RemovalsRefused != len(enrolled) {
		return stats, ErrInconsistent
	}
	log.Info(ctx, "load test completed successfully")
	return stats, nil
}

// saveSignups writes the generated signups as a JSON array.
func saveSignups(filename string, signups []Signup) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("create directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(signups, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal signups: %w", err)
	}
	if err := os.WriteFile(filename, data, filePermission); err != nil {
		return fmt.Errorf("write %s: %w", filename, err)
	}
	return nil
}

func displayFinalStats(ctx context.Context, log logger.Logger, stats *Stats) {
	var perSecond float64
	if stats.Duration > 0 {
		requests := stats.SignupsGenerated + stats.DuplicatesRefused + stats.RemovalsAccepted + stats.RemovalsRefused
		perSecond = float64(requests) / stats.Duration.Seconds()
	}

	log.Info(ctx, "final statistics",
		logger.Int("signupsGenerated", stats.SignupsGenerated),
		logger.Int("signupsAccepted", stats.SignupsAccepted),
		logger.Int("signupsFull", stats.SignupsFull),
		logger.Int("signupsFailed", stats.SignupsFailed),
		logger.Int("duplicatesRefused", stats.DuplicatesRefused),
		logger.Int("removalsAccepted", stats.RemovalsAccepted),
		logger.Int("removalsRefused", stats.RemovalsRefused),
		logger.Int("mismatches", stats.Mismatches),
		logger.Duration("duration", stats.Duration),
		logger.Float64("requestsPerSecond", perSecond),
	)
}
