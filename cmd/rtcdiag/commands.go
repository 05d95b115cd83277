package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"rtcdiag/internal/core/domain"
	"rtcdiag/internal/core/services"
	"rtcdiag/internal/infrastructure/statsdump"
	"rtcdiag/pkg/config"
	"rtcdiag/pkg/logger"
	"rtcdiag/pkg/validation"
)

const (
	configFlagName = "config"

	outputText = "text"
	outputJSON = "json"
)

// environment is what every subcommand needs, built from global flags.
type environment struct {
	cfg      *config.Config
	log      *zap.Logger
	analysis *services.AnalysisService
}

func newEnvironment(c *cli.Context) (*environment, error) {
	cfg, err := config.Load(c.String(configFlagName))
	if err != nil {
		return nil, err
	}
	level := cfg.Logging.Level
	if c.Bool("debug") {
		level = "debug"
	}
	log := logger.New(level)

	analysis := services.NewAnalysisService(
		statsdump.NewDefaultRegistry(),
		services.NewSummaryService(services.NewScoringService(cfg.ScoringThresholds())),
		services.WithLogger(log),
		services.WithMaxDumpBytes(cfg.Analysis.MaxDumpBytes),
	)
	return &environment{cfg: cfg, log: log, analysis: analysis}, nil
}

// readDump reads the dump named by the first argument; "-" reads stdin.
func readDump(c *cli.Context) (string, error) {
	if c.NArg() != 1 {
		return "", fmt.Errorf("expected exactly one dump file argument, got %d", c.NArg())
	}
	path := c.Args().First()

	var r io.Reader
	if path == "-" {
		r = c.App.Reader
		if r == nil {
			r = os.Stdin
		}
	} else {
		f, err := os.Open(path)
		if err != nil {
			return "", err
		}
		defer f.Close()
		r = f
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}

func analyzeCommand() *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Usage:     "parse a dump and print its quality summary",
		ArgsUsage: "<file|->",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "output format: text or json",
				Value:   outputText,
			},
			&cli.StringFlag{
				Name:  "format",
				Usage: "skip detection and parse as event-log or snapshot",
			},
			&cli.BoolFlag{
				Name:  "include-session",
				Usage: "include the reconstructed metric series in json output",
			},
		},
		Action: func(c *cli.Context) error {
			output := c.String("output")
			if output != outputText && output != outputJSON {
				return fmt.Errorf("unsupported output %q (expected %s or %s)", output, outputText, outputJSON)
			}
			var format domain.DumpFormat
			if name := c.String("format"); name != "" {
				f, err := validation.ValidateFormat(name)
				if err != nil {
					return err
				}
				format = f
			}

			env, err := newEnvironment(c)
			if err != nil {
				return err
			}
			defer env.log.Sync()

			content, err := readDump(c)
			if err != nil {
				return err
			}
			analysis, err := env.analysis.AnalyzeAs(c.Context, content, format)
			if err != nil {
				return err
			}

			if output == outputJSON {
				if !c.Bool("include-session") {
					trimmed := *analysis
					trimmed.Session = nil
					analysis = &trimmed
				}
				enc := json.NewEncoder(c.App.Writer)
				enc.SetIndent("", "  ")
				return enc.Encode(analysis)
			}
			return writeReport(c.App.Writer, analysis)
		},
	}
}

func detectCommand() *cli.Command {
	return &cli.Command{
		Name:      "detect",
		Usage:     "print the format of a dump",
		ArgsUsage: "<file|->",
		Action: func(c *cli.Context) error {
			env, err := newEnvironment(c)
			if err != nil {
				return err
			}
			defer env.log.Sync()

			content, err := readDump(c)
			if err != nil {
				return err
			}
			format, err := env.analysis.Detect(c.Context, content)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(c.App.Writer, format)
			return err
		},
	}
}
