// Package cli provides the command-line interface for kabupnl.
package cli

import (
	"context"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"kabu-pnl/internal/config"
	"kabu-pnl/internal/logging"
)

// Version information, set at link time with
// -ldflags "-X kabu-pnl/internal/cli.Version=... -X kabu-pnl/internal/cli.BuildDate=...".
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
)

// App holds the application dependencies.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
}

// withLogger returns ctx carrying the application logger.
func (a *App) withLogger(ctx context.Context) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return logging.WithLogger(ctx, a.Logger)
}

// NewRootCmd creates the root command for the CLI. When cfg is nil the
// configuration is loaded from --config (or the default directory) and the
// logger is built from it before any command runs.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	rootCmd := &cobra.Command{
		Use:   "kabupnl",
		Short: "Realized P&L from Japanese brokerage execution history",
		Long: `kabupnl reads execution-history CSV exports (約定履歴) from Japanese
brokerages, normalizes them and computes realized P&L per sell using FIFO lot
matching, separately for each symbol and account type (特定/一般/NISA).

Sells whose cost basis lies before the exported period are reported as
missing cost. Declare the holdings you had at the start of the period as
opening positions to resolve them.

Use 'kabupnl examples' to see common workflows.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if app.Config == nil {
				dir, _ := cmd.Flags().GetString("config")
				loaded, err := config.Load(dir)
				if err != nil {
					return err
				}
				app.Config = loaded
				app.Logger = logging.NewLoggerWithConfig(loaded.LoggingConfig())
			}

			if app.Config.Report.JSON && !cmd.Flags().Changed("json") {
				_ = cmd.Flags().Set("json", "true")
			}
			if !app.Config.Report.ColorEnabled {
				color.NoColor = true
			}

			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				logging.SetDebugLevel()
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/kabu-pnl)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	addCoreCommands(rootCmd, app)
	addReportCommands(rootCmd, app)
	addPositionsCommands(rootCmd, app)
	addHelpCommands(rootCmd)

	return rootCmd
}

// addCoreCommands adds core utility commands.
func addCoreCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(app))
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(map[string]string{
					"version":    Version,
					"build_date": BuildDate,
				})
			}
			output.Printf("kabupnl v%s\n", Version)
			output.Dim("Build date: %s", BuildDate)
			return nil
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "View application configuration.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(app.Config)
			}
			showConfig(output, app.Config)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			path := app.Config.Path
			if path == "" {
				path = config.DefaultConfigDir() + "/config.toml"
			}
			if output.IsJSON() {
				return output.JSON(map[string]string{"path": path})
			}
			output.Println(path)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "template",
		Short: "Print the default configuration file",
		Run: func(cmd *cobra.Command, args []string) {
			NewOutput(cmd).Printf("%s", config.Template())
		},
	})

	return cmd
}

func showConfig(output *Output, cfg *config.Config) {
	output.Bold("Logging")
	output.Printf("  Level:          %s\n", cfg.Log.Level)
	output.Printf("  Console:        %v\n", cfg.Log.Console)
	output.Printf("  File:           %v\n", cfg.Log.File)
	if cfg.Log.File {
		output.Printf("  File Path:      %s\n", cfg.Log.FilePath)
		output.Printf("  Rotation:       %d MB, %d backups, %d days\n", cfg.Log.MaxSize, cfg.Log.MaxBackups, cfg.Log.MaxAge)
	}
	output.Println()

	output.Bold("Report")
	output.Printf("  JSON:           %v\n", cfg.Report.JSON)
	output.Printf("  Color:          %v\n", cfg.Report.ColorEnabled)
	output.Printf("  Date Format:    %s\n", cfg.Report.DateFormat)
	output.Println()

	output.Bold("Positions")
	file := cfg.Positions.File
	if file == "" {
		file = "(none)"
	}
	output.Printf("  File:           %s\n", file)
}
