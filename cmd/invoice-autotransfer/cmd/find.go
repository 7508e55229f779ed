package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/rezonia/invoice-autotransfer/internal/transfer"
)

var (
	findDocEntry int
	findCardCode string
	findFormat   string
	findTimeout  time.Duration
)

var findCmd = &cobra.Command{
	Use:   "find",
	Short: "Inspect candidate delivery notes without invoicing them",
	Long: `Find walks the same pages the auto-transfer run would and reports, for each
matching note, whether it would be invoiced and if not, why. Nothing is
created; this is a read-only diagnostic.

Examples:
  invoice-autotransfer find --card-code 04166
  invoice-autotransfer find --doc-entry 12345 --companies SBO_Alianza
  invoice-autotransfer find -f json`,
	RunE: runFind,
}

func init() {
	rootCmd.AddCommand(findCmd)

	findCmd.Flags().IntVar(&findDocEntry, "doc-entry", 0, "Match a single document entry")
	findCmd.Flags().StringVar(&findCardCode, "card-code", "", "Match notes for this customer code")
	findCmd.Flags().StringVarP(&findFormat, "format", "f", "table", "Output format (table, json)")
	findCmd.Flags().DurationVar(&findTimeout, "timeout", 5*time.Minute, "Lookup timeout")
}

func runFind(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	if cfg.Host == "" {
		return fmt.Errorf("SAP_HOST is not set")
	}

	log := newLogger()
	engine := newEngine(cfg, log)

	var q transfer.NotesQuery
	if findDocEntry != 0 {
		q.DocEntry = &findDocEntry
	}
	q.CardCode = findCardCode

	ctx, cancel := context.WithTimeout(context.Background(), findTimeout)
	defer cancel()

	entries := engine.FindNotesMatching(ctx, q)

	switch findFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	case "table":
		tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "COMPANY\tDOCENTRY\tCARDCODE\tDOCDATE\tINVOICEABLE\tREASON")
		for _, e := range entries {
			date := ""
			if !e.DocDate.IsZero() {
				date = e.DocDate.Format("2006-01-02")
			}
			fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%t\t%s\n",
				e.Tenant, e.DocEntry, e.CardCode, date, e.CanInvoice, e.Reason)
		}
		return tw.Flush()
	default:
		return fmt.Errorf("unsupported output format: %s", findFormat)
	}
}
