package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/giannis84/tunelib/internal/catalog"
	"github.com/giannis84/tunelib/internal/client"
	"github.com/giannis84/tunelib/internal/favsync"
)

const (
	defaultAPIURL = "http://localhost:8080"
	envAPIURL     = "TUNELIB_API_URL"
	envClientID   = "JAMENDO_CLIENT_ID"
	envStateFile  = "TUNELIB_STATE_FILE"
)

// Runner holds the dependencies shared by every command action.
type Runner struct {
	api     *client.Client
	catalog *catalog.Client
	logger  *log.Logger
	output  io.Writer
	// notifier is shared so the last favorite message is what the user sees.
	notifier *favsync.Notifier
}

// RunnerOpts configures a Runner. API and Catalog are built from flags when nil.
type RunnerOpts struct {
	API     *client.Client
	Catalog *catalog.Client
	Logger  *log.Logger
	Output  io.Writer
}

func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	return &Runner{
		api:      opts.API,
		catalog:  opts.Catalog,
		logger:   opts.Logger,
		output:   opts.Output,
		notifier: favsync.NewNotifier(favsync.DefaultNotificationDuration),
	}
}

// App builds the root command.
func (r *Runner) App() *cli.Command {
	return &cli.Command{
		Name:  "tunectl",
		Usage: "Manage your tunelib account and music library",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "api-url",
				Usage:   "Base URL of the tunelib API",
				Value:   defaultAPIURL,
				Sources: cli.EnvVars(envAPIURL),
			},
			&cli.StringFlag{
				Name:    "client-id",
				Usage:   "Jamendo client id used for catalog lookups",
				Sources: cli.EnvVars(envClientID),
			},
			&cli.StringFlag{
				Name:    "state-file",
				Usage:   "Where the access token is kept",
				Value:   client.DefaultStatePath(),
				Sources: cli.EnvVars(envStateFile),
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print JSON instead of text",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Enable debug logging",
			},
		},
		Before:   r.before,
		Commands: r.register(),
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		registerCommand, loginCommand, logoutCommand, whoamiCommand, passwordCommand, deleteAccountCommand,
		browseCommand, searchCommand, libraryCommand, favCommand,
	} {
		commands = append(commands, fn(r))
	}
	return commands
}

func (r *Runner) before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.Bool("verbose") {
		r.logger.SetLevel(log.DebugLevel)
	}
	if r.api == nil {
		store := client.NewFileTokenStore(cmd.String("state-file"))
		r.api = client.New(cmd.String("api-url"), store)
		r.logger.Debug("using api", "url", cmd.String("api-url"), "state", store.Path())
	}
	if r.catalog == nil {
		r.catalog = catalog.NewClient(cmd.String("client-id"))
	}
	return ctx, nil
}

func (r *Runner) writeJSON(data any) error {
	output, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	if _, err := fmt.Fprintf(r.output, "%s\n", output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlain(format string, args ...any) {
	fmt.Fprintf(r.output, format, args...)
}

// formatDuration renders seconds as m:ss.
func formatDuration(seconds float64) string {
	total := int(seconds)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
