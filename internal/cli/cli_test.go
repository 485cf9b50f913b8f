package cli_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dativetop/dativetop-server/internal/cli"
)

const defaultAddr = "127.0.0.1:6543"

func TestParseArgs_Defaults(t *testing.T) {
	args, err := cli.ParseArgs(nil, defaultAddr)
	require.NoError(t, err)

	assert.Equal(t, defaultAddr, args.Addr)
	assert.Equal(t, "info", args.LogLevel)
	assert.False(t, args.Dev)
}

func TestParseArgs_Overrides(t *testing.T) {
	raw := []string{"-addr", ":9000", "-log-level", "debug", "-dev"}
	args, err := cli.ParseArgs(raw, defaultAddr)
	require.NoError(t, err)

	assert.Equal(t, ":9000", args.Addr)
	assert.Equal(t, "debug", args.LogLevel)
	assert.True(t, args.Dev)
	assert.Equal(t, raw, args.RawArgs)
}

func TestParseArgs_Errors(t *testing.T) {
	cases := map[string][]string{
		"unknown flag":       {"-port", "1"},
		"empty addr":         {"-addr", " "},
		"bad level":          {"-log-level", "loud"},
		"positional args":    {"extra"},
		"missing flag value": {"-addr"},
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := cli.ParseArgs(raw, defaultAddr)
			assert.Error(t, err)
		})
	}
}
