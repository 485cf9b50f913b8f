package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"
)

// CLIArgs are the command-line arguments for dativetop-server. Every flag
// is optional; with none the server listens on its historic fixed address.
type CLIArgs struct {
	// Addr is the HTTP listen address.
	Addr string

	// LogLevel is one of debug, info, warn, error.
	LogLevel string

	// Dev switches logging to the human-readable console writer.
	Dev bool

	// RawArgs is the original args slice (useful for debugging/tests).
	RawArgs []string
}

// ParseArgs parses a slice of args and returns CLIArgs. Use in tests by passing
// arbitrary slices. The function is deterministic and does not read os.Args.
func ParseArgs(args []string, defaultAddr string) (*CLIArgs, error) {
	fs := flag.NewFlagSet("dativetop-server", flag.ContinueOnError)
	var (
		addr     = fs.String("addr", defaultAddr, "HTTP listen address")
		logLevel = fs.String("log-level", "info", "Log level: debug|info|warn|error")
		dev      = fs.Bool("dev", false, "Human-readable console logs")
	)

	// Ensure Parse doesn't write to stdout/stderr in tests
	fs.SetOutput(io.Discard)

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}

	if strings.TrimSpace(*addr) == "" {
		return nil, fmt.Errorf("-addr must not be empty")
	}

	switch *logLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("unknown -log-level %q", *logLevel)
	}

	return &CLIArgs{
		Addr:     *addr,
		LogLevel: *logLevel,
		Dev:      *dev,
		RawArgs:  args,
	}, nil
}
