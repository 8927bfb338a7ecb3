package commands

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/ikkim/storefront-backend/internal/report"
	"github.com/spf13/cobra"
)

var (
	importDryRun bool
	importYes    bool
)

var importProductsCmd = &cobra.Command{
	Use:   "import-products <file.xlsx>",
	Short: "Create or update products from an XLSX sheet",
	Long: `Read products from the first sheet of an XLSX workbook and upsert them by SKU.

The header row names the columns (any order, case-insensitive):
  sku, name, price            required
  description, category       optional; unknown categories are created
  stock, active, images       optional; images are comma separated URLs

Examples:
  shopctl import-products catalog.xlsx --dry-run
  shopctl import-products catalog.xlsx --yes`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		rows, rowErrs, err := report.ReadProductImport(f)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "parsed %d rows, %d rejected\n", len(rows), len(rowErrs))
		for _, re := range rowErrs {
			fmt.Fprintf(out, "  %s\n", re)
		}
		if importDryRun || len(rows) == 0 {
			return nil
		}

		if !importYes && !confirm(cmd, fmt.Sprintf("Import %d products?", len(rows))) {
			fmt.Fprintln(out, "import cancelled")
			return nil
		}

		ctx := cmd.Context()
		e, err := openEnv(ctx)
		if err != nil {
			return err
		}
		defer e.close()

		result, err := e.services.Import.ImportProducts(ctx, rows)
		if result != nil {
			fmt.Fprintf(out, "created %d, updated %d, new categories %d, skipped %d\n",
				result.Created, result.Updated, result.CategoriesCreated, len(result.Skipped))
			for _, re := range result.Skipped {
				fmt.Fprintf(out, "  %s\n", re)
			}
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(importProductsCmd)
	importProductsCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "Parse and validate the sheet without writing")
	importProductsCmd.Flags().BoolVarP(&importYes, "yes", "y", false, "Skip the confirmation prompt")
}

func confirm(cmd *cobra.Command, question string) bool {
	fmt.Fprintf(cmd.OutOrStdout(), "%s (yes/no): ", question)
	answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "yes" || answer == "y"
}
