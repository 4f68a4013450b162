package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/s0up4200/elnk/elnk"
)

var (
	customAlias string
	randomAlias bool
	withRetry   bool
	ensure      bool
	urlsFile    string
)

// shortenCmd represents the shorten command
var shortenCmd = &cobra.Command{
	Use:   "shorten <url>",
	Short: "Create a short link",
	Long: `Create a short link for a URL.

With --ensure an existing link pointing at the same URL is returned instead of
creating a new one. With --retry server errors are retried using the retry
settings from the config.`,
	Args: cobra.ExactArgs(1),
	RunE: runShorten,
}

// bulkCmd represents the bulk command
var bulkCmd = &cobra.Command{
	Use:   "bulk [url...]",
	Short: "Create short links for many URLs",
	Long: `Create short links for every URL given as an argument or listed in --file
(one per line, lines starting with # are ignored). With --alias, links are
named <alias>-1, <alias>-2 and so on.`,
	RunE: runBulk,
}

func init() {
	rootCmd.AddCommand(shortenCmd)
	rootCmd.AddCommand(bulkCmd)

	shortenCmd.Flags().StringVarP(&customAlias, "alias", "a", "", "custom alias for the short link")
	shortenCmd.Flags().BoolVar(&randomAlias, "random-alias", false, "generate a random alias")
	shortenCmd.Flags().BoolVar(&withRetry, "retry", false, "retry on server errors")
	shortenCmd.Flags().BoolVar(&ensure, "ensure", false, "reuse an existing link for the same URL")
	shortenCmd.MarkFlagsMutuallyExclusive("alias", "random-alias")
	shortenCmd.MarkFlagsMutuallyExclusive("retry", "ensure")

	bulkCmd.Flags().StringVarP(&urlsFile, "file", "f", "", "read URLs from file (- for stdin)")
	bulkCmd.Flags().StringVarP(&customAlias, "alias", "a", "", "base alias for the created links")
}

func runShorten(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	target := args[0]

	if v := elnk.ValidateURL(target, elnk.DefaultURLOptions()); !v.Valid {
		return fmt.Errorf("invalid URL %q: %s", target, v.Error)
	}

	alias := customAlias
	if randomAlias {
		generated, err := elnk.GenerateAlias(elnk.DefaultAliasOptions())
		if err != nil {
			return err
		}
		alias = generated
	}

	logger.Debug().Str("url", target).Str("alias", alias).Msg("Creating short link")

	var (
		short *elnk.ShortLink
		err   error
	)
	switch {
	case ensure:
		short, err = client.EnsureShortURL(ctx, target, alias)
	case withRetry:
		short, err = client.CreateShortURLWithRetry(ctx, target, alias, cfg.Retry.Options())
	default:
		short, err = client.CreateShortURL(ctx, target, alias)
	}

	if err == nil && !short.Existing {
		recordHistory(ctx, short)
	}

	return render(newPrinter(cmd), short, err, printShortLink)
}

func runBulk(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)

	urls := args
	if urlsFile != "" {
		fromFile, err := readURLs(cmd, urlsFile)
		if err != nil {
			return err
		}
		urls = append(urls, fromFile...)
	}
	if len(urls) == 0 {
		return fmt.Errorf("no URLs given (pass them as arguments or with --file)")
	}

	logger.Info().Int("count", len(urls)).Msg("Creating short links")

	result, err := client.CreateBulkShortURLs(ctx, urls, customAlias)
	if err == nil {
		for i := range result.Successful {
			recordHistory(ctx, &result.Successful[i])
		}
	}

	if err := render(newPrinter(cmd), result, err, printBulkCreate); err != nil {
		return err
	}
	if result != nil && !result.Success() {
		return fmt.Errorf("%d of %d links failed", result.ErrorCount, result.Total)
	}
	return nil
}

func printBulkCreate(w io.Writer, result *elnk.BulkResult[elnk.ShortLink]) {
	for _, short := range result.Successful {
		fmt.Fprintf(w, "  ✓ %s → %s\n", short.ShortURL, short.OriginalURL)
	}
	printBulkSummary(w, result)
}

// readURLs reads one URL per line, skipping blank lines and # comments
func readURLs(cmd *cobra.Command, path string) ([]string, error) {
	var r io.Reader
	if path == "-" {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open URL file: %w", err)
		}
		defer f.Close()
		r = f
	}

	var urls []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read URL file: %w", err)
	}
	return urls, nil
}

func recordHistory(ctx context.Context, short *elnk.ShortLink) {
	if store == nil {
		return
	}
	if err := store.Record(ctx, short); err != nil {
		logger.Warn().Err(err).Str("link_id", short.ID.String()).Msg("Failed to record link in history")
	}
}
