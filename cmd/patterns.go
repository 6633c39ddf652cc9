package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/zjrosen/bloom/internal/pattern"
	"github.com/zjrosen/bloom/internal/ui/styles"
)

var patternsCmd = &cobra.Command{
	Use:   "patterns",
	Short: "List the breathing intentions",
	Long: `List every intention bloom offers: the built-ins plus anything from the
patterns file (--patterns or patterns_file in config).

Examples:
  bloom patterns
  bloom patterns --patterns ~/breath.yaml
  bloom patterns validate ~/breath.yaml`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		catalog, err := pattern.LoadCatalog(cfg.PatternsFile)
		if err != nil {
			return fmt.Errorf("loading patterns: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderCatalog(catalog.List()))
		return nil
	},
}

var patternsValidateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Check a patterns file without starting a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0]) //nolint:gosec // G304: path is the command argument
		if err != nil {
			return fmt.Errorf("reading %s: %w", args[0], err)
		}
		f, err := pattern.ParseFile(data)
		if err != nil {
			return err
		}
		if _, err := pattern.NewCatalog(pattern.Merge(f.Intentions)...); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d intention(s) OK\n", args[0], len(f.Intentions))
		return nil
	},
}

func init() {
	patternsCmd.AddCommand(patternsValidateCmd)
	rootCmd.AddCommand(patternsCmd)
}

func renderCatalog(intentions []pattern.Intention) string {
	rows := make([][]string, 0, len(intentions))
	for _, in := range intentions {
		p := in.Pattern
		rows = append(rows, []string{
			in.Key,
			in.Title,
			p.Name,
			fmt.Sprintf("%s-%s-%s-%s",
				styles.FormatSeconds(p.Inhale), styles.FormatSeconds(p.Hold),
				styles.FormatSeconds(p.Exhale), styles.FormatSeconds(p.HoldAfter)),
			strconv.Itoa(p.Cycles),
		})
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(styles.BorderDefaultColor)).
		Headers("KEY", "TITLE", "PATTERN", "IN-HOLD-OUT-HOLD", "CYCLES").
		Rows(rows...).
		String()
}
