package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
	"github.com/xeptore/flaw/v8"

	"github.com/stagekit/stagekit/config"
	"github.com/stagekit/stagekit/constant"
	"github.com/stagekit/stagekit/log"
)

const (
	flagConfigFilePath = "config"
	flagSetlistFile    = "setlist"
	flagSetlistID      = "setlist-id"
	flagSongID         = "song-id"
	flagStartIndex     = "start"
)

func main() {
	logger := log.NewPretty(os.Stderr).Level(zerolog.InfoLevel)
	if err := godotenv.Load(); nil != err {
		if errors.Is(err, os.ErrNotExist) {
			logger.Debug().Msg(".env file was not found")
		} else {
			logger.Fatal().Err(err).Msg("Failed to load .env file")
		}
	}

	//nolint:exhaustruct
	app := &cli.App{
		Name:     "stagekit",
		Version:  constant.Version,
		Compiled: constant.CompileTime,
		Suggest:  true,
		Usage:    "Performance mode for setlists",
		Commands: []*cli.Command{
			//nolint:exhaustruct
			{
				Name:    "perform",
				Aliases: []string{"p"},
				Usage:   "Run performance mode for a setlist or a single song",
				Action:  performAction,
				Flags: []cli.Flag{
					//nolint:exhaustruct
					&cli.StringFlag{
						Name:    flagConfigFilePath,
						Aliases: []string{"c"},
						Usage:   "Config file path",
					},
					//nolint:exhaustruct
					&cli.StringFlag{
						Name:    flagSetlistFile,
						Aliases: []string{"f"},
						Usage:   "Local setlist JSON file",
					},
					//nolint:exhaustruct
					&cli.StringFlag{
						Name:  flagSetlistID,
						Usage: "Remote setlist ID",
					},
					//nolint:exhaustruct
					&cli.StringFlag{
						Name:  flagSongID,
						Usage: "Remote song ID (single-song performance)",
					},
					//nolint:exhaustruct
					&cli.IntFlag{
						Name:  flagStartIndex,
						Usage: "Starting song index",
					},
				},
			},
			//nolint:exhaustruct
			{
				Name:   "inspect",
				Usage:  "Print the contents of a setlist without performing it",
				Action: inspect,
				Flags: []cli.Flag{
					//nolint:exhaustruct
					&cli.StringFlag{
						Name:     flagSetlistFile,
						Aliases:  []string{"f"},
						Usage:    "Local setlist JSON file",
						Required: true,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); nil != err {
		if errors.Is(err, context.Canceled) {
			logger.Trace().Msg("Application was canceled")
			return
		}
		if flawErr := new(flaw.Flaw); errors.As(err, &flawErr) {
			logger.Fatal().Func(log.Flaw(flawErr)).Msg("Application exited with flaw")
			return
		}
		logger.Fatal().Err(err).Msg("Application exited with error")
	}
}

func loadConfig(cliCtx *cli.Context, logger zerolog.Logger) (*config.Config, error) {
	cfgFilePath := cliCtx.String(flagConfigFilePath)
	cfgEnv := os.Getenv("CONFIG")
	switch {
	case cfgFilePath != "" && cfgEnv != "":
		return nil, errors.New("config file path and config environment variable are both set. specify only one")
	case cfgFilePath != "":
		logger.Debug().Str("config_file_path", cfgFilePath).Msg("Loading config from file")
		cfg, err := config.FromFile(cfgFilePath)
		if nil != err {
			return nil, fmt.Errorf("failed to load config file: %v", err)
		}
		return cfg, nil
	case cfgEnv != "":
		logger.Debug().Msg("Loading config from environment variable")
		cfg, err := config.FromString(cfgEnv)
		if nil != err {
			return nil, fmt.Errorf("failed to load config from environment variable: %v", err)
		}
		return cfg, nil
	default:
		return config.Default(), nil
	}
}
