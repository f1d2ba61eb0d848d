package cli

import (
	"github.com/spf13/cobra"
)

// addHelpCommands adds help and documentation commands.
func addHelpCommands(rootCmd *cobra.Command) {
	rootCmd.AddCommand(newExamplesCmd())
}

func newExamplesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "examples",
		Short: "Show common workflow examples",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			examples := []struct {
				title    string
				commands []string
			}{
				{
					title: "Yearly realized P&L",
					commands: []string{
						"kabupnl report 2024.csv                       # One export",
						"kabupnl report 2023.csv 2024.csv              # Several exports, merged by date",
						"kabupnl report --json 2024.csv > pnl.json     # Machine-readable output",
					},
				},
				{
					title: "Resolve missing cost basis",
					commands: []string{
						"kabupnl positions template 2024.csv -o pos.toml  # One entry per shortfall",
						"$EDITOR pos.toml                                 # Fill in average_cost",
						"kabupnl positions check pos.toml                 # Validate the file",
						"kabupnl report -p pos.toml 2024.csv              # Report with opening positions",
					},
				},
				{
					title: "Inspect an export",
					commands: []string{
						"kabupnl parse 2024.csv                # Encoding and row counters",
						"kabupnl parse --fills 2024.csv        # Every accepted fill",
						"kabupnl parse --max-errors 0 2024.csv # Every rejected row",
						"kabupnl --debug report 2024.csv       # Log each shortfall",
					},
				},
			}

			if output.IsJSON() {
				out := make(map[string][]string, len(examples))
				for _, ex := range examples {
					out[ex.title] = ex.commands
				}
				return output.JSON(out)
			}

			output.Bold("Common Workflow Examples")
			for _, ex := range examples {
				output.Println()
				output.Info("%s", ex.title)
				for _, c := range ex.commands {
					output.Printf("  %s\n", c)
				}
			}
			return nil
		},
	}
}
