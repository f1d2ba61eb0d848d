package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"kabu-pnl/internal/models"
	"kabu-pnl/internal/pipeline"
	"kabu-pnl/internal/positions"
	"kabu-pnl/pkg/utils"
)

const defaultMaxErrors = 20

// addReportCommands adds the commands that read execution-history files.
func addReportCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newReportCmd(app))
	rootCmd.AddCommand(newParseCmd(app))
}

func newReportCmd(app *App) *cobra.Command {
	var (
		positionsFile string
		maxErrors     int
	)

	cmd := &cobra.Command{
		Use:   "report <csv>...",
		Short: "Compute realized P&L from execution-history files",
		Long: `Read one or more execution-history CSV files, match every sell against
earlier buys (FIFO, per symbol and account type) and print realized P&L.

Opening positions are read from --positions, or from [positions] file in the
configuration when the flag is not given.`,
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
			app.Logger.Debug().
				Int("files", len(report.Files)).
				Int("positions", len(opening)).
				Int("trades", len(report.Trades)).
				Msg("Report computed")

			if output.IsJSON() {
				return output.JSON(report)
			}
			renderReport(output, app, report, maxErrors)
			return nil
		},
	}

	cmd.Flags().StringVarP(&positionsFile, "positions", "p", "", "opening positions file (.toml, .yaml, .json)")
	cmd.Flags().IntVar(&maxErrors, "max-errors", defaultMaxErrors, "parse errors to show per file (0 for all)")

	return cmd
}

func newParseCmd(app *App) *cobra.Command {
	var (
		maxErrors int
		showFills bool
	)

	cmd := &cobra.Command{
		Use:   "parse <csv>...",
		Short: "Parse execution-history files and show what was read",
		Long:  "Decode and parse execution-history files without matching. Shows the detected encoding, row counters, rejected rows and, with --fills, every accepted fill.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx := app.withLogger(cmd.Context())

			report, err := pipeline.Run(ctx, sources(args), nil)
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"files": report.Files,
					"fills": report.Fills,
				})
			}

			renderFiles(output, report.Files, maxErrors)
			if showFills {
				output.Println()
				renderFills(output, app, report.Fills)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&maxErrors, "max-errors", defaultMaxErrors, "parse errors to show per file (0 for all)")
	cmd.Flags().BoolVar(&showFills, "fills", false, "list every accepted fill")

	return cmd
}

func sources(paths []string) []pipeline.Source {
	out := make([]pipeline.Source, 0, len(paths))
	for _, p := range paths {
		out = append(out, pipeline.FileSource(p))
	}
	return out
}

func loadPositions(path string) ([]models.OpeningPosition, error) {
	if path == "" {
		return nil, nil
	}
	book, err := positions.Load(path)
	if err != nil {
		return nil, err
	}
	return book.List(), nil
}

// formatDate renders an ISO trade date with the configured layout. Dates
// that are not real calendar days are shown as parsed.
func (a *App) formatDate(iso string) string {
	layout := a.Config.Report.DateFormat
	if layout == "" || layout == "2006-01-02" {
		return iso
	}
	t, err := time.Parse("2006-01-02", iso)
	if err != nil {
		return iso
	}
	return t.Format(layout)
}

func renderReport(output *Output, app *App, report *pipeline.Report, maxErrors int) {
	renderFiles(output, report.Files, maxErrors)
	output.Println()

	if len(report.Trades) == 0 {
		output.Dim("No sell executions found.")
	} else {
		renderTrades(output, app, report.Trades)
		output.Println()
		renderSummary(output, report)
		if len(report.BySymbol) > 0 {
			output.Println()
			renderBySymbol(output, report)
		}
	}

	if len(report.MissingCost) > 0 {
		output.Println()
		renderMissingCost(output, report.MissingCost)
	}
}

func renderFiles(output *Output, files []pipeline.FileReport, maxErrors int) {
	output.Bold("Files")
	table := NewTable(output, "File", "Encoding", "Rows", "OK", "Failed", "Unknown").AlignRight(2, 3, 4, 5)
	for _, f := range files {
		failed := fmt.Sprint(f.FailedRows)
		if f.FailedRows > 0 {
			failed = output.Red(failed)
		}
		table.AddRow(f.Name, f.Encoding, fmt.Sprint(f.TotalRows), fmt.Sprint(f.SuccessRows), failed, fmt.Sprint(f.UnknownFieldCount))
	}
	table.Render()

	for _, f := range files {
		if len(f.Errors) == 0 {
			continue
		}
		output.Println()
		if !f.HeaderFound {
			output.Error("%s: %s", f.Name, f.Errors[0])
			continue
		}
		output.Warning("%s: %d rejected rows", f.Name, len(f.Errors))
		shown := f.Errors
		if maxErrors > 0 && len(shown) > maxErrors {
			shown = shown[:maxErrors]
		}
		for _, e := range shown {
			output.Printf("  %s\n", e)
		}
		if rest := len(f.Errors) - len(shown); rest > 0 {
			output.Dim("  ... %d more (use --max-errors 0 to show all)", rest)
		}
	}
}

func renderFills(output *Output, app *App, fills []models.NormalizedFill) {
	output.Bold("Fills")
	table := NewTable(output, "Date", "Code", "Name", "Account", "Side", "Qty", "Price", "Fees", "Tax").AlignRight(5, 6, 7, 8)
	for _, f := range fills {
		table.AddRow(
			app.formatDate(f.TradeDate),
			f.SymbolCode,
			Truncate(f.SymbolName, 20),
			accountLabel(f.AccountType),
			string(f.Side),
			utils.FormatQuantity(f.Quantity),
			utils.FormatYenFixed(f.Price, 1),
			amountCell(f.Fees),
			amountCell(f.Tax),
		)
	}
	table.Render()
}

func renderTrades(output *Output, app *App, trades []models.RealizedTrade) {
	output.Bold("Realized Trades")
	table := NewTable(output, "Date", "Code", "Name", "Account", "Qty", "Sell", "Avg Buy", "Fees", "Tax", "P&L").AlignRight(4, 5, 6, 7, 8, 9)
	estimated := false
	for _, t := range trades {
		if t.FeesEstimated() {
			estimated = true
		}
		table.AddRow(
			app.formatDate(t.TradeDate),
			t.SymbolCode,
			Truncate(t.SymbolName, 20),
			accountLabel(t.AccountType),
			utils.FormatQuantity(t.Quantity),
			utils.FormatYenFixed(t.SellPrice, 1),
			avgPriceCell(t.AverageBuyPrice),
			amountCell(t.Fees),
			amountCell(t.Tax),
			output.pnlCell(t),
		)
	}
	table.Render()
	if estimated {
		output.Dim("* fees or tax unknown, counted as zero")
	}
}

func renderSummary(output *Output, report *pipeline.Report) {
	s := report.Summary
	output.Bold("Summary")
	output.Printf("  Total P&L:        %s\n", output.FormatPnL(s.TotalPnL))
	output.Printf("  Trades:           %d calculable, %d missing cost\n", s.Calculable, s.Uncalculable)
	output.Printf("  Wins / Losses:    %d / %d (%d even)\n", s.Wins, s.Losses, s.Draws)
	output.Printf("  Win Rate:         %s\n", utils.FormatPercent(s.WinRate))
	output.Printf("  Total Win:        %s\n", utils.FormatYen(s.TotalWin))
	output.Printf("  Total Loss:       %s\n", utils.FormatYen(s.TotalLoss))
	output.Printf("  Average Win:      %s\n", utils.FormatYen(s.AverageWin))
	output.Printf("  Average Loss:     %s\n", utils.FormatYen(s.AverageLoss))
	output.Printf("  Profit Factor:    %s\n", s.ProfitFactor)
	output.Printf("  Max Drawdown:     %s\n", utils.FormatYen(s.MaxDrawdown))
}

func renderBySymbol(output *Output, report *pipeline.Report) {
	output.Bold("By Symbol")
	table := NewTable(output, "Code", "Name", "Trades", "Win", "Loss", "Win Rate", "Total P&L").AlignRight(2, 3, 4, 5, 6)
	for _, s := range report.BySymbol {
		table.AddRow(
			s.SymbolCode,
			Truncate(s.SymbolName, 20),
			fmt.Sprint(s.Trades),
			fmt.Sprint(s.Wins),
			fmt.Sprint(s.Losses),
			utils.FormatPercent(s.WinRate),
			output.FormatPnL(s.TotalPnL),
		)
	}
	table.Render()
}

func renderMissingCost(output *Output, diags []models.MissingCost) {
	output.Warning("Missing cost basis")
	output.Println("The following sells exceed the buys in the files. Add opening positions for them:")
	table := NewTable(output, "Code", "Name", "Account", "Unmatched Qty").AlignRight(3)
	for _, m := range diags {
		table.AddRow(m.SymbolCode, Truncate(m.SymbolName, 20), accountLabel(m.AccountType), utils.FormatQuantity(m.Quantity))
	}
	table.Render()
	output.Dim("Run 'kabupnl positions template <csv>...' to generate a positions file.")
}
