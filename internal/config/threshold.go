package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/giantswarm/gotestr/pkg/report"
)

// defaultUnitThreshold and defaultIntegrationThreshold mirror args.rs's
// hard-coded fallbacks (50/100ms and 500ms/1s respectively).
var (
	defaultUnitThreshold        = report.TimeThreshold{Warn: 50 * time.Millisecond, Critical: 100 * time.Millisecond}
	defaultIntegrationThreshold = report.TimeThreshold{Warn: 500 * time.Millisecond, Critical: 1 * time.Second}
)

// UnitTestThreshold resolves RUST_TEST_TIME_UNIT, falling back to the
// built-in default when unset.
func UnitTestThreshold() (report.TimeThreshold, error) {
	return thresholdFromEnv("RUST_TEST_TIME_UNIT", defaultUnitThreshold)
}

// IntegrationTestThreshold resolves RUST_TEST_TIME_INTEGRATION.
func IntegrationTestThreshold() (report.TimeThreshold, error) {
	return thresholdFromEnv("RUST_TEST_TIME_INTEGRATION", defaultIntegrationThreshold)
}

// thresholdFromEnv parses a "WARN,CRITICAL" millisecond pair (§6), the Go
// analogue of TimeThreshold::from_env_var. Unlike the Rust source, which
// panics on a malformed value, this returns an error so the CLI layer can
// report it as an ArgumentError instead of crashing the process.
func thresholdFromEnv(name string, fallback report.TimeThreshold) (report.TimeThreshold, error) {
	raw, ok := os.LookupEnv(name)
	if !ok {
		return fallback, nil
	}

	warnStr, critStr, found := strings.Cut(raw, ",")
	if !found {
		return report.TimeThreshold{}, fmt.Errorf("%s: expected \"WARN,CRITICAL\" milliseconds, got %q", name, raw)
	}

	warnMs, err := strconv.ParseUint(strings.TrimSpace(warnStr), 10, 64)
	if err != nil {
		return report.TimeThreshold{}, fmt.Errorf("%s: invalid warn value %q: %w", name, warnStr, err)
	}
	critMs, err := strconv.ParseUint(strings.TrimSpace(critStr), 10, 64)
	if err != nil {
		return report.TimeThreshold{}, fmt.Errorf("%s: invalid critical value %q: %w", name, critStr, err)
	}
	if warnMs > critMs {
		return report.TimeThreshold{}, fmt.Errorf("%s: warn time (%dms) must be <= critical time (%dms)", name, warnMs, critMs)
	}

	return report.TimeThreshold{
		Warn:     time.Duration(warnMs) * time.Millisecond,
		Critical: time.Duration(critMs) * time.Millisecond,
	}, nil
}
