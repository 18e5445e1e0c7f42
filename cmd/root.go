// Package cmd implements the ytcc command line.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/n2p5/ytcc/internal/config"
	"github.com/n2p5/ytcc/internal/pipeline"
	"github.com/n2p5/ytcc/internal/report"
	"github.com/n2p5/ytcc/internal/youtube"
)

// errRunFailed tells Execute the failure was already reported.
var errRunFailed = errors.New("run failed")

// App holds the process streams and hooks the command runs with.
type App struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer

	// ClientOptions are applied to every YouTube client after the config.
	ClientOptions []youtube.Option
	// WaitForKey blocks until a key is pressed. Nil disables the pause.
	WaitForKey func()
}

// NewApp returns an App bound to the standard streams.
func NewApp() *App {
	return &App{
		In:         os.Stdin,
		Out:        os.Stdout,
		Err:        os.Stderr,
		WaitForKey: func() { waitForKey(os.Stdin, os.Stderr) },
	}
}

// NewRootCmd builds the ytcc root command.
func NewRootCmd(app *App) *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:   "ytcc [channel-id]",
		Short: "Report comment statistics for every video of a YouTube channel",
		Long: `ytcc lists every video in a channel's uploads playlist, fetches the
comment count of each and writes the total, maximum, mean and population
standard deviation with the per-video data to a timestamped JSON file.

The API key and channel id are taken from flags, the environment
(YTCC_API_KEY or YOUTUBE_API_KEY, YTCC_CHANNEL), a .env file or ytcc.yaml,
and prompted for when still missing.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.loadConfig(cmd, args, configFile)
			if err == nil {
				err = app.run(cmd.Context(), cfg)
			}
			if err != nil {
				app.reportError(err)
			}

			if cfg.Pause && app.WaitForKey != nil {
				app.WaitForKey()
			}

			if err != nil && cfg.ExitStatus {
				return errRunFailed
			}
			return nil
		},
	}

	cmd.SetIn(app.In)
	cmd.SetOut(app.Out)
	cmd.SetErr(app.Err)
	cmd.Flags().StringVar(&configFile, "config", "", "config file (default ytcc.yaml in . or $HOME/.config/ytcc)")
	config.RegisterFlags(cmd.Flags())
	return cmd
}

// Execute runs the root command and returns the process exit status.
func Execute(ctx context.Context) int {
	app := NewApp()
	if err := NewRootCmd(app).ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errRunFailed) {
			fmt.Fprintln(app.Err, err)
		}
		return 1
	}
	return 0
}

func (a *App) loadConfig(cmd *cobra.Command, args []string, configFile string) (config.Config, error) {
	// Used when the config cannot be built, so early failures still pause.
	fallback := config.Config{Pause: true}
	if noPause, err := cmd.Flags().GetBool("no-pause"); err == nil && noPause {
		fallback.Pause = false
	}
	if exitStatus, err := cmd.Flags().GetBool("exit-status"); err == nil {
		fallback.ExitStatus = exitStatus
	}

	v, err := config.NewViper(cmd.Flags())
	if err != nil {
		return fallback, err
	}
	if err := config.ReadFiles(v, configFile); err != nil {
		return fallback, err
	}
	if len(args) == 1 && !cmd.Flags().Changed("channel") {
		v.Set(config.KeyChannel, args[0])
	}

	cfg, err := config.Load(v)
	if err != nil {
		return fallback, err
	}
	return cfg.Prompt(a.In, a.Out)
}

func (a *App) run(ctx context.Context, cfg config.Config) error {
	log := newLogger(a.Err, cfg.LogLevel)

	opts := []youtube.Option{
		youtube.WithPageSize(cfg.PageSize),
		youtube.WithLocation(cfg.Location),
		youtube.WithLogger(log),
	}
	opts = append(opts, a.ClientOptions...)

	client, err := youtube.NewClient(ctx, cfg.APIKey, opts...)
	if err != nil {
		return err
	}

	p := &pipeline.Pipeline{
		Source: client,
		Sink:   report.NewWriter(cfg.ResultsDir),
		Out:    a.Out,
		Log:    log,
	}
	_, err = p.Run(ctx, cfg.ChannelID)
	return err
}

var lineBreaks = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

// reportError prints err as the run's single diagnostic line.
func (a *App) reportError(err error) {
	color.New(color.FgRed).Fprintf(a.Out, "An error occurred : %s\n", lineBreaks.Replace(err.Error()))
}

func newLogger(w io.Writer, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.WarnLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, NoColor: color.NoColor}).
		Level(lvl).
		With().
		Timestamp().
		Logger()
}
