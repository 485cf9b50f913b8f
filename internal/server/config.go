package server

import "github.com/dativetop/dativetop-server/internal/logging"

// DefaultListenAddr is where the demo server has always listened.
const DefaultListenAddr = "127.0.0.1:6543"

type Config struct {
	// ListenAddr is the HTTP listen address for the API server.
	ListenAddr string

	// Logger defaults to a stdout JSON logger tagged "server".
	Logger logging.Logger

	// MaxBodyBytes caps the size of an update payload. Zero means 1 MiB.
	MaxBodyBytes int64
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		ListenAddr:   DefaultListenAddr,
		MaxBodyBytes: 1 << 20,
	}
}
