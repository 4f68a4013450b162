package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/s0up4200/elnk/elnk"
	"github.com/s0up4200/elnk/history"
)

var historyLimit int

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show links created from this machine",
	Long: `Show the local record of links created with shorten and bulk.

--filter accepts the same expressions as links list, evaluated against the
recorded alias, destination and creation time.`,
	Args: cobra.NoArgs,
	RunE: runHistoryList,
}

var historyRemoveCmd = &cobra.Command{
	Use:   "remove <id> [id...]",
	Short: "Remove entries from the local history",
	Long:  `Remove entries from the local history. The links themselves are not deleted.`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runHistoryRemove,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyRemoveCmd)

	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum entries to show (0 for all)")
	historyCmd.Flags().StringVarP(&filterExpr, "filter", "f", "", "filter expression")
}

func requireHistory() error {
	if store == nil {
		if cfg != nil && !cfg.History.Enabled {
			return errors.New("history is disabled (set history.enabled in config)")
		}
		return errors.New("history is not available")
	}
	return nil
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	if err := requireHistory(); err != nil {
		return err
	}
	ctx := commandContext(cmd)

	// Filtering happens before the limit is applied
	fetch := historyLimit
	if filterExpr != "" {
		fetch = 0
	}

	entries, err := store.List(ctx, fetch)
	if err == nil && filterExpr != "" {
		entries, err = filterEntries(cmd, entries)
		if err == nil && historyLimit > 0 && len(entries) > historyLimit {
			entries = entries[:historyLimit]
		}
	}

	return render(newPrinter(cmd), entries, err, func(w io.Writer, entries []history.Entry) {
		if len(entries) == 0 {
			fmt.Fprintln(w, "No links in history.")
			return
		}
		for _, entry := range entries {
			short := entry.ShortURL
			if short == "" {
				short = "(unknown)"
			}
			fmt.Fprintf(w, "• %s → %s\n", short, entry.OriginalURL)
			fmt.Fprintf(w, "  ID: %s  Created: %s\n", entry.LinkID, entry.CreatedAt.Local().Format("2006-01-02 15:04"))
		}
	})
}

// filterEntries keeps the entries whose link matches filterExpr
func filterEntries(cmd *cobra.Command, entries []history.Entry) ([]history.Entry, error) {
	links := make([]elnk.Link, len(entries))
	byID := make(map[elnk.ID]history.Entry, len(entries))
	for i, entry := range entries {
		links[i] = entry.Link()
		byID[entry.LinkID] = entry
	}

	matched, err := filters.Apply(commandContext(cmd), filterExpr, links)
	if err != nil {
		return nil, fmt.Errorf("invalid filter expression: %w", err)
	}

	result := make([]history.Entry, 0, len(matched))
	for _, link := range matched {
		result = append(result, byID[link.ID])
	}
	return result, nil
}

func runHistoryRemove(cmd *cobra.Command, args []string) error {
	if err := requireHistory(); err != nil {
		return err
	}
	ctx := commandContext(cmd)

	removed := make([]elnk.ID, 0, len(args))
	for _, arg := range args {
		id := elnk.ID(arg)
		ok, err := store.Remove(ctx, id)
		if err != nil {
			return err
		}
		if !ok {
			logger.Warn().Str("link_id", arg).Msg("Link not in history")
			continue
		}
		removed = append(removed, id)
	}

	return render(newPrinter(cmd), removed, nil, func(w io.Writer, removed []elnk.ID) {
		fmt.Fprintf(w, "Removed %d of %d entries from history\n", len(removed), len(args))
	})
}
