package conf

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/knadh/koanf/parsers/dotenv"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/lambda-feedback/deskshell/util/cliflags"
	"github.com/urfave/cli/v2"
	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/zap"
)

// DefaultConfig maps flat, dot-delimited config keys to default values.
type DefaultConfig map[string]any

var ErrInvalidConfigFile = errors.New("invalid config file")

type ParseOptions struct {
	// Cli is the cli.Context from urfave/cli
	Cli *cli.Context

	// CliMap is a map of cli flag names to config keys
	CliMap map[string]string

	// Defaults is a map of default values
	Defaults DefaultConfig

	// EnvPrefix is the prefix for env vars
	EnvPrefix string

	// FileName is the name of the json configuration file to load
	FileName string

	// Schema is the json schema the configuration file is validated against
	Schema []byte

	// EnvFileName is the name of the dotenv file to load
	EnvFileName string

	// CaseSensitiveKeys lists map-valued config keys, e.g. "sidecar.env",
	// whose entries keep the case they were written in when set from
	// env vars
	CaseSensitiveKeys []string

	// Log is the logger to use
	Log *zap.Logger
}

// Parse loads the configuration from, in increasing order of precedence,
// defaults, the json config file, the dotenv file, the environment and
// the cli flags.
func Parse[C any](opt ParseOptions) (C, error) {
	var log *zap.Logger
	if opt.Log != nil {
		log = opt.Log
	} else {
		log = zap.NewNop()
	}

	var config C

	k := koanf.New(".")

	if opt.Defaults != nil {
		if err := k.Load(confmap.Provider(opt.Defaults, "."), nil); err != nil {
			log.Error("error loading defaults", zap.Error(err))
			return config, err
		}
	}

	if opt.FileName != "" {
		if err := loadFile(k, opt.FileName, opt.Schema, log); err != nil {
			return config, err
		}
	}

	transformPrefixedEnv := func(s string) string {
		return transformEnv(s, opt.EnvPrefix, opt.CaseSensitiveKeys)
	}

	if opt.EnvFileName != "" {
		parser := dotenv.ParserEnv(opt.EnvPrefix, ".", transformPrefixedEnv)
		if err := k.Load(file.Provider(opt.EnvFileName), parser); err != nil {
			log.Error("error parsing env file",
				zap.Error(err),
				zap.String("file", opt.EnvFileName),
			)
		}
	}

	if err := k.Load(env.Provider(opt.EnvPrefix, ".", transformPrefixedEnv), nil); err != nil {
		log.Error("error parsing env vars", zap.Error(err))
		return config, err
	}

	if opt.Cli != nil {
		transformFlag := func(s string) string {
			if opt.CliMap != nil {
				if name, ok := opt.CliMap[s]; ok {
					return name
				}
			}

			// replace - with _
			return strings.ReplaceAll(strings.ToLower(s), "-", "_")
		}

		if err := k.Load(cliflags.Provider(opt.Cli, ".", transformFlag), nil); err != nil {
			log.Error("error parsing cli flags", zap.Error(err))
			return config, err
		}
	}

	if err := k.UnmarshalWithConf("", &config, koanf.UnmarshalConf{Tag: "conf"}); err != nil {
		log.Error("error unmarshalling config", zap.Error(err))
		return config, err
	}

	return config, nil
}

// loadFile merges the json file into k. A missing file is logged and
// skipped, a file violating the schema is an error.
func loadFile(k *koanf.Koanf, fileName string, schema []byte, log *zap.Logger) error {
	log = log.With(zap.String("file", fileName))

	data, err := os.ReadFile(fileName)
	if err != nil {
		log.Error("error reading file", zap.Error(err))
		return nil
	}

	if schema != nil {
		if err := validate(data, schema); err != nil {
			log.Error("error validating file", zap.Error(err))
			return err
		}
	}

	if err := k.Load(file.Provider(fileName), json.Parser()); err != nil {
		log.Error("error parsing file", zap.Error(err))
		return fmt.Errorf("%w: %w", ErrInvalidConfigFile, err)
	}

	return nil
}

func validate(data, schema []byte) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfigFile, err)
	}

	if result.Valid() {
		return nil
	}

	violations := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		violations = append(violations, desc.String())
	}

	return fmt.Errorf("%w: %s", ErrInvalidConfigFile, strings.Join(violations, "; "))
}

// transformEnv maps PREFIX_SECTION__KEY to section.key. Below a case
// sensitive key, the remainder is kept verbatim as a single map key.
func transformEnv(s, prefix string, caseSensitive []string) string {
	// pop prefix if it is set
	if len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix) {
		s = s[len(prefix):]
	}

	// allow specifying nested env vars w/ __
	parts := strings.Split(s, "__")

	path := make([]string, 0, len(parts))
	for i, part := range parts {
		path = append(path, strings.ToLower(part))

		if i < len(parts)-1 && slices.Contains(caseSensitive, strings.Join(path, ".")) {
			path = append(path, strings.Join(parts[i+1:], "__"))
			break
		}
	}

	return strings.Join(path, ".")
}
