package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/dativetop/dativetop-server/internal/interfaces"
)

// Logger and Field are re-exported so callers only need this package.
type (
	Logger = interfaces.Logger
	Field  = interfaces.Field
)

// Options controls how a ZeroLogger writes.
type Options struct {
	// Level is one of debug, info, warn, error. Empty means info.
	Level string

	// Console switches from JSON lines to zerolog's human-readable writer.
	Console bool

	// Out defaults to os.Stdout.
	Out io.Writer
}

// ZeroLogger implements interfaces.Logger on top of zerolog.
type ZeroLogger struct {
	zl zerolog.Logger
}

// New builds a ZeroLogger tagged with component.
func New(component string, opts Options) (*ZeroLogger, error) {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	if opts.Console {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	level := zerolog.InfoLevel
	if opts.Level != "" {
		lvl, err := zerolog.ParseLevel(opts.Level)
		if err != nil {
			return nil, err
		}
		level = lvl
	}

	zl := zerolog.New(out).Level(level).With().Timestamp().Logger()
	if component != "" {
		zl = zl.With().Str("component", component).Logger()
	}
	return &ZeroLogger{zl: zl}, nil
}

// NewStdoutLogger returns an info-level JSON logger on stdout.
func NewStdoutLogger(component string) *ZeroLogger {
	l, _ := New(component, Options{})
	return l
}

func (z *ZeroLogger) log(ev *zerolog.Event, msg string, fields []Field) {
	if len(fields) > 0 {
		m := make(map[string]interface{}, len(fields))
		for _, f := range fields {
			m[f.Key] = f.Value
		}
		ev = ev.Fields(m)
	}
	ev.Msg(msg)
}

func (z *ZeroLogger) Debug(msg string, fields ...Field) {
	z.log(z.zl.Debug(), msg, fields)
}

func (z *ZeroLogger) Info(msg string, fields ...Field) {
	z.log(z.zl.Info(), msg, fields)
}

func (z *ZeroLogger) Warn(msg string, fields ...Field) {
	z.log(z.zl.Warn(), msg, fields)
}

func (z *ZeroLogger) Error(msg string, fields ...Field) {
	z.log(z.zl.Error(), msg, fields)
}

// With returns a child logger carrying fields on every entry.
func (z *ZeroLogger) With(fields ...Field) Logger {
	ctx := z.zl.With()
	for _, f := range fields {
		ctx = ctx.Interface(f.Key, f.Value)
	}
	return &ZeroLogger{zl: ctx.Logger()}
}
