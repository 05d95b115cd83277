package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	if err := run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "rtcdiag:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	app := &cli.App{
		Name:  "rtcdiag",
		Usage: "analyze WebRTC statistics dumps and score call quality",
		Flags: []cli.Flag{ // Global flags.
			&cli.BoolFlag{
				Name:    "debug",
				Usage:   "enable debug logging",
				EnvVars: []string{"RTCDIAG_DEBUG"},
			},
			&cli.StringFlag{
				Name:    configFlagName,
				Aliases: []string{"c"},
				Usage:   "config file path",
				Value:   "configs/config.yaml",
				EnvVars: []string{"RTCDIAG_CONFIG"},
			},
		},
		Commands: []*cli.Command{
			analyzeCommand(),
			detectCommand(),
		},
	}

	return app.Run(args)
}
