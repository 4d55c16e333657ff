package cmd

import (
	"github.com/lambda-feedback/deskshell/app"
	"github.com/lambda-feedback/deskshell/config"
	"github.com/lambda-feedback/deskshell/util/conf"
	"github.com/lambda-feedback/deskshell/util/logging"
	"github.com/urfave/cli/v2"
)

var (
	runCmdDescription = `The run command starts the shell. It launches the sidecar
(unless autostart is disabled), serves the command and event
bridge for the presentation layer, and blocks until the
application is asked to exit.

On exit, the sidecar is killed before the shell terminates.`
	runCmd = &cli.Command{
		Name:        "run",
		Usage:       "Start the shell and supervise the sidecar.",
		Description: runCmdDescription,
		Action:      runAction,
		Flags: []cli.Flag{
			// sidecar flags
			&cli.StringFlag{
				Name:     "sidecar",
				Usage:    "the logical name of the sidecar executable.",
				Aliases:  []string{"s"},
				Category: "sidecar",
				EnvVars:  []string{"DESKSHELL_SIDECAR__NAME"},
			},
			&cli.StringFlag{
				Name:     "command",
				Usage:    "the command to invoke instead of resolving the sidecar by name.",
				Aliases:  []string{"c"},
				Category: "sidecar",
				EnvVars:  []string{"DESKSHELL_SIDECAR__COMMAND"},
			},
			&cli.StringSliceFlag{
				Name:     "arg",
				Usage:    "additional arguments to pass to the sidecar.",
				Aliases:  []string{"a"},
				Category: "sidecar",
			},
			&cli.PathFlag{
				Name:     "cwd",
				Usage:    "the working directory of the sidecar.",
				Category: "sidecar",
				EnvVars:  []string{"DESKSHELL_SIDECAR__CWD"},
			},
			&cli.BoolFlag{
				Name:     "autostart",
				Usage:    "start the sidecar when the shell starts.",
				Category: "sidecar",
				EnvVars:  []string{"DESKSHELL_SIDECAR__AUTOSTART"},
			},
			&cli.BoolFlag{
				Name:     "keep-stale-handle",
				Usage:    "do not forget a sidecar that exited on its own.",
				Category: "sidecar",
				EnvVars:  []string{"DESKSHELL_SIDECAR__KEEP_STALE_HANDLE"},
			},
			// bridge flags
			&cli.StringFlag{
				Name:     "host",
				Aliases:  []string{"H"},
				Usage:    "the host the bridge listens on.",
				Category: "bridge",
				EnvVars:  []string{"DESKSHELL_BRIDGE__HOST"},
			},
			&cli.IntFlag{
				Name:     "port",
				Aliases:  []string{"P"},
				Usage:    "the port the bridge listens on.",
				Category: "bridge",
				EnvVars:  []string{"DESKSHELL_BRIDGE__PORT"},
			},
			&cli.BoolFlag{
				Name:     "h2c",
				Usage:    "enable HTTP/2 cleartext upgrade.",
				Category: "bridge",
				EnvVars:  []string{"DESKSHELL_BRIDGE__H2C"},
			},
			&cli.StringFlag{
				Name:     "auth-key",
				Usage:    "require this key in the api-key header of commands.",
				Category: "bridge",
				EnvVars:  []string{"DESKSHELL_BRIDGE__AUTH_KEY"},
			},
		},
	}
)

// cliMap maps flag names to config keys
var cliMap = map[string]string{
	"sidecar":           "sidecar.name",
	"command":           "sidecar.command",
	"arg":               "sidecar.args",
	"cwd":               "sidecar.cwd",
	"autostart":         "sidecar.autostart",
	"keep-stale-handle": "sidecar.keep_stale_handle",
	"host":              "bridge.host",
	"port":              "bridge.port",
	"h2c":               "bridge.h2c",
	"auth-key":          "bridge.auth_key",
}

func runAction(ctx *cli.Context) error {
	log, err := logging.LoggerFromContext(ctx.Context)
	if err != nil {
		return err
	}

	cfg, err := conf.Parse[config.Config](conf.ParseOptions{
		Cli:         ctx,
		CliMap:      cliMap,
		Defaults:    config.DefaultConfig,
		EnvPrefix:   config.EnvPrefix,
		FileName:    ctx.Path("config"),
		Schema:      config.Schema,
		EnvFileName: ctx.Path("env-file"),
		Log:         log,

		CaseSensitiveKeys: config.CaseSensitiveKeys,
	})
	if err != nil {
		return err
	}

	shell, err := app.New(log, cfg)
	if err != nil {
		return err
	}

	return shell.Run(ctx.Context)
}

func init() {
	rootApp.Commands = append(rootApp.Commands, runCmd)

	// run is the default command
	rootApp.Flags = append(rootApp.Flags, runCmd.Flags...)
	rootApp.Action = runAction
}
