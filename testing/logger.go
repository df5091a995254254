package testing

import (
	"testing"

	"github.com/arloliu/stratum/types"
)

// NewTestLogger returns a Logger that writes through t.Logf.
//
// Each line is prefixed with its level ("WARN: layered strategy not ready [query interest]"),
// so a failing test shows which degraded path the strategy took. Output only appears
// for failed tests or with go test -v. Fatal fails the test instead of exiting.
//
// Example:
//
//	ls, err := stratum.NewLayeredStrategy(&cfg, "Arena", stratum.WithLogger(stratumtest.NewTestLogger(t)))
func NewTestLogger(t testing.TB) types.Logger {
	return &testLogger{t: t}
}

type testLogger struct {
	t testing.TB
}

var _ types.Logger = (*testLogger)(nil)

func (l *testLogger) Debug(msg string, keysAndValues ...any) {
	l.log("DEBUG", msg, keysAndValues)
}

func (l *testLogger) Info(msg string, keysAndValues ...any) {
	l.log("INFO", msg, keysAndValues)
}

func (l *testLogger) Warn(msg string, keysAndValues ...any) {
	l.log("WARN", msg, keysAndValues)
}

func (l *testLogger) Error(msg string, keysAndValues ...any) {
	l.log("ERROR", msg, keysAndValues)
}

func (l *testLogger) Fatal(msg string, keysAndValues ...any) {
	l.t.Helper()
	l.t.Fatalf("FATAL: %s %v", msg, keysAndValues)
}

func (l *testLogger) log(level, msg string, keysAndValues []any) {
	l.t.Helper()
	l.t.Logf("%s: %s %v", level, msg, keysAndValues)
}
