package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/cryptology/internal/historyui"
	"github.com/verte-zerg/cryptology/internal/model"
	"github.com/verte-zerg/cryptology/internal/report"
	"github.com/verte-zerg/cryptology/internal/store"
)

var (
	historyCipher  string
	historySince   string
	historyLast    int
	historySummary bool
	historyPlain   bool
	historyPrune   string
	historySameAs  string
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Browse recorded runs",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCmd,
	}
	cmd.Flags().StringVar(&historyCipher, "cipher", "", "cipher filter")
	cmd.Flags().StringVar(&historySince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&historyLast, "last", 0, "limit to last N runs")
	cmd.Flags().BoolVar(&historySummary, "summary", false, "print per-cipher totals")
	cmd.Flags().BoolVar(&historyPlain, "plain", false, "print a table instead of opening the browser")
	cmd.Flags().StringVar(&historyPrune, "prune-before", "", "delete runs older than this date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&historySameAs, "same-input", "", "only runs whose input matched this file")
	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := loadConfig()
	if err != nil {
		return err
	}
	filter, err := historyFilter()
	if err != nil {
		return err
	}

	st, err := store.Open(historyDBPath(fileCfg))
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	ctx := cmd.Context()
	if historyPrune != "" {
		cutoff, err := parseDate("--prune-before", historyPrune)
		if err != nil {
			return err
		}
		n, err := st.DeleteRuns(ctx, *cutoff)
		if err != nil {
			return fmt.Errorf("failed to prune runs: %w", err)
		}
		logErrf("Deleted %d runs.\n", n)
		return nil
	}

	if historySummary {
		sums, err := st.SummarizeCiphers(ctx)
		if err != nil {
			return fmt.Errorf("failed to summarize runs: %w", err)
		}
		return report.WriteSummaries(cmd.OutOrStdout(), sums)
	}

	if historyPlain || !isTerminal(cmd.OutOrStdout()) {
		runs, err := st.ListRuns(ctx, filter)
		if err != nil {
			return fmt.Errorf("failed to list runs: %w", err)
		}
		return report.WriteRuns(cmd.OutOrStdout(), runs)
	}

	return historyui.Run(historyui.NewModel(st, filter))
}

func historyFilter() (model.HistoryFilter, error) {
	filter := model.HistoryFilter{Last: historyLast}
	if historyLast < 0 {
		return filter, fmt.Errorf("--last must not be negative")
	}
	if historyCipher != "" {
		c, err := model.ParseCipher(historyCipher)
		if err != nil {
			return filter, fmt.Errorf("invalid --cipher value: %w", err)
		}
		filter.Cipher = c
	}
	if historySince != "" {
		since, err := parseDate("--since", historySince)
		if err != nil {
			return filter, err
		}
		filter.Since = since
	}
	if historySameAs != "" {
		data, err := os.ReadFile(historySameAs)
		if err != nil {
			return filter, fmt.Errorf("failed to read --same-input file: %w", err)
		}
		filter.InputDigest = inputDigest(data)
	}
	return filter, nil
}

func parseDate(flag, value string) (*time.Time, error) {
	parsed, err := time.ParseInLocation("2006-01-02", value, time.Local)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value: %w", flag, err)
	}
	return &parsed, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
