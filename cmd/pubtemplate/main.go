package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-pubtemplate/pkg/config"
	"github.com/goliatone/go-pubtemplate/pkg/tui"
)

// cli carries the global flags and the dependencies built from them.
type cli struct {
	configPath string
	apiURL     string
	token      string
	dialect    string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger

	// driver replaces the survey prompts; tests script it.
	driver tui.PromptDriver
}

func newRootCmd(app *cli) *cobra.Command {
	root := &cobra.Command{
		Use:   "pubtemplate",
		Short: "Compose and render publishing templates",
		Long: `pubtemplate manages the publishing templates a Telegram bot uses to turn
processed news items into channel messages.

Templates belong to a task. Each holds an ordered list of fields (extracted,
summary, date_today or static) plus header, footer and formatting settings.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app.logger != nil {
				_ = app.logger.Sync()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&app.configPath, "config", "", "Config file (or set "+config.EnvConfigPath+")")
	flags.StringVar(&app.apiURL, "api-url", "", "Templates API base URL (or set "+config.EnvAPIURL+")")
	flags.StringVar(&app.token, "token", "", "API bearer token (or set "+config.EnvToken+")")
	flags.StringVar(&app.dialect, "dialect", "", "Output dialect: telegram-html, markdown or plain")
	flags.BoolVarP(&app.verbose, "verbose", "v", false, "Enable verbose logging")

	root.AddCommand(
		newPresetsCmd(app),
		newListCmd(app),
		newShowCmd(app),
		newComposeCmd(app),
		newRenderCmd(app),
		newValidateCmd(app),
		newDocCmd(app),
		newDeleteCmd(app),
	)
	return root
}

func (app *cli) setup() error {
	cfg, err := config.Load(app.configPath)
	if err != nil {
		return err
	}
	cfg.Apply(config.Overrides{
		APIURL:  app.apiURL,
		Token:   app.token,
		Dialect: app.dialect,
		Verbose: app.verbose,
	})
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := cfg.NewLogger()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	app.cfg = cfg
	app.logger = logger
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(&cli{}).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
