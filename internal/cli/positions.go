package cli

import (
	"os"

	"github.com/spf13/cobra"

	"kabu-pnl/internal/pipeline"
	"kabu-pnl/internal/positions"
	"kabu-pnl/pkg/utils"
)

// addPositionsCommands adds opening-position commands.
func addPositionsCommands(rootCmd *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:   "positions",
		Short: "Opening positions",
		Long: `Opening positions declare holdings bought before the exported period.
They are matched before any buy in the files.`,
	}

	cmd.AddCommand(newPositionsTemplateCmd(app))
	cmd.AddCommand(newPositionsCheckCmd(app))

	rootCmd.AddCommand(cmd)
}

func newPositionsTemplateCmd(app *App) *cobra.Command {
	var (
		positionsFile string
		outFile       string
	)

	cmd := &cobra.Command{
		Use:   "template <csv>...",
		Short: "Generate a positions file for every missing cost basis",
		Long: `Run the files through matching and write a TOML positions skeleton with one
entry per symbol and account type whose sells could not be matched. Fill in
average_cost, then pass the file to 'kabupnl report --positions'.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx := app.withLogger(cmd.Context())

			if positionsFile == "" {
				positionsFile = app.Config.Positions.File
			}
			opening, err := loadPositions(positionsFile)
			if err != nil {
				return err
			}
			report, err := pipeline.Run(ctx, sources(args), opening)
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(report.MissingCost)
			}

			if len(report.MissingCost) == 0 {
				output.Success("✓ Every sell is matched, no opening positions needed")
				return nil
			}

			content := positions.Template(report.MissingCost)
			if outFile == "" {
				output.Printf("%s", content)
				return nil
			}
			if err := os.WriteFile(outFile, []byte(content), 0644); err != nil {
				return err
			}
			output.Success("✓ Wrote %d positions to %s", len(report.MissingCost), outFile)
			return nil
		},
	}

	cmd.Flags().StringVarP(&positionsFile, "positions", "p", "", "existing opening positions to apply first (default: [positions] file)")
	cmd.Flags().StringVarP(&outFile, "output", "o", "", "write the template to a file instead of stdout")

	return cmd
}

func newPositionsCheckCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "check <file>",
		Short: "Validate a positions file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			book, err := positions.Load(args[0])
			if err != nil {
				output.Error("Positions file is invalid: %v", err)
				return err
			}
			app.Logger.Debug().Str("file", args[0]).Int("positions", book.Len()).Msg("Positions loaded")

			if output.IsJSON() {
				return output.JSON(book.List())
			}

			table := NewTable(output, "Code", "Name", "Account", "Qty", "Avg Cost").AlignRight(3, 4)
			for _, p := range book.List() {
				table.AddRow(p.SymbolCode, Truncate(p.SymbolName, 20), accountLabel(p.AccountType),
					utils.FormatQuantity(p.Quantity), utils.FormatYenFixed(p.AverageCost, 2))
			}
			table.Render()
			output.Success("✓ %d opening positions are valid", book.Len())
			return nil
		},
	}
}
