package config

import (
	_ "embed"

	"github.com/lambda-feedback/deskshell/internal/bridge"
	"github.com/lambda-feedback/deskshell/internal/sidecar"
	"github.com/lambda-feedback/deskshell/util/conf"
)

// EnvPrefix is the prefix of environment variables read into the config,
// e.g. DESKSHELL_SIDECAR__NAME for sidecar.name.
const EnvPrefix = "DESKSHELL_"

type Config struct {
	// LogLevel is the log level for the application
	LogLevel string `conf:"log_level"`

	// LogFormat is the log format for the application
	LogFormat string `conf:"log_format"`

	// Sidecar is the configuration of the supervised process
	Sidecar sidecar.Config `conf:"sidecar"`

	// Bridge is the configuration of the presentation layer bridge
	Bridge bridge.Config `conf:"bridge"`
}

// CaseSensitiveKeys are the config maps whose keys are passed on verbatim.
var CaseSensitiveKeys = []string{"sidecar.env"}

// Schema is the json schema config files are validated against.
//
//go:embed schema.json
var Schema []byte

var DefaultConfig = conf.Merge(
	conf.DefaultConfig{
		"log_level":  "info",
		"log_format": "production",
	},
	conf.MergeDefaults("sidecar", conf.DefaultConfig{
		"name":              sidecar.DefaultName,
		"autostart":         true,
		"chunk_size":        sidecar.DefaultChunkSize,
		"keep_stale_handle": false,
	}),
	conf.MergeDefaults("bridge", conf.DefaultConfig{
		"host":   "127.0.0.1",
		"port":   1430,
		"h2c":    false,
		"buffer": bridge.DefaultBuffer,
	}),
)
