package cli

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/arloliu/stratum"
)

// loadStrategy reads the configuration and initializes the layered strategy of the
// selected world.
func loadStrategy(opts *RootOptions, stderr io.Writer, logger stratum.Logger) (*stratum.Config, *stratum.LayeredStrategy, error) {
	cfg, err := stratum.LoadConfig(opts.ConfigPath)
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "load configuration", err)
	}

	if logger == nil {
		logger = newLogger(opts, stderr)
	}

	ls, err := stratum.NewLayeredStrategy(cfg, opts.World, stratum.WithLogger(logger))
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "create strategy", err)
	}
	if err := ls.Init(); err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "initialize strategy", err)
	}

	return cfg, ls, nil
}

func newLogger(opts *RootOptions, stderr io.Writer) stratum.Logger {
	if !opts.Verbose {
		return stratum.NewNopLogger()
	}

	return stratum.NewSlogLogger(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
}

// warningCollector records warnings and errors and forwards everything to next.
type warningCollector struct {
	next stratum.Logger

	mu       sync.Mutex
	warnings []string
}

var _ stratum.Logger = (*warningCollector)(nil)

func (c *warningCollector) Debug(msg string, kv ...any) { c.next.Debug(msg, kv...) }
func (c *warningCollector) Info(msg string, kv ...any)  { c.next.Info(msg, kv...) }
func (c *warningCollector) Fatal(msg string, kv ...any) { c.next.Fatal(msg, kv...) }

func (c *warningCollector) Warn(msg string, kv ...any) {
	c.record(msg, kv)
	c.next.Warn(msg, kv...)
}

func (c *warningCollector) Error(msg string, kv ...any) {
	c.record(msg, kv)
	c.next.Error(msg, kv...)
}

func (c *warningCollector) record(msg string, kv []any) {
	var sb strings.Builder
	sb.WriteString(msg)
	for i := 0; i+1 < len(kv); i += 2 {
		fmt.Fprintf(&sb, " %v=%v", kv[i], kv[i+1])
	}

	c.mu.Lock()
	c.warnings = append(c.warnings, sb.String())
	c.mu.Unlock()
}

func (c *warningCollector) list() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return append([]string{}, c.warnings...)
}
