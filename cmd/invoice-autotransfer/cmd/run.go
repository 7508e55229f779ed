package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var (
	runTimeout time.Duration
	runFormat  string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one auto-transfer pass over all configured companies",
	Long: `Run a single auto-transfer pass: for every configured company database,
fetch the open delivery notes of the allowed customers, filter out the
ineligible ones, and create an A/R invoice for each remaining note.

The run never fails partially: per-note and per-company failures are
recorded in the summary and the pass continues.

Examples:
  invoice-autotransfer run
  invoice-autotransfer run --companies SBO_FGE --timeout 10m
  invoice-autotransfer run -f json`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().DurationVar(&runTimeout, "timeout", 30*time.Minute, "Overall run timeout")
	runCmd.Flags().StringVarP(&runFormat, "format", "f", "table", "Output format (table, json)")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	if cfg.Host == "" {
		return fmt.Errorf("SAP_HOST is not set")
	}

	log := newLogger()
	engine := newEngine(cfg, log)

	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	summary := engine.RunAutoTransfer(ctx)

	switch runFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	case "table":
		tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "COMPANY\tFOUND\tINVOICED\tALREADY\tINELIGIBLE\tERRORS")

		names := make([]string, 0, len(summary.PerTenant))
		for name := range summary.PerTenant {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			st := summary.PerTenant[name]
			fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%d\n",
				name, st.TotalFound, st.Succeeded, st.AlreadyInvoiced, st.Ineligible, st.Errors)
		}
		fmt.Fprintf(tw, "TOTAL\t%d\t%d\t%d\t%d\t%d\n",
			summary.TotalFound, summary.TotalSucceeded, summary.TotalAlreadyInvoiced,
			summary.TotalIneligible, summary.TotalErrors)
		return tw.Flush()
	default:
		return fmt.Errorf("unsupported output format: %s", runFormat)
	}
}
