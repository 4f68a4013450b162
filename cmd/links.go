package cmd

import (
	"bufio"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/s0up4200/elnk/elnk"
)

const dateLayout = "2006-01-02"

var (
	// List flags
	filterExpr string
	preset     string
	listAll    bool
	page       int
	limit      int
	search     string
	sortBy     string
	sortOrder  string

	// Search flags
	searchDomain string
	searchTag    string
	dateFrom     string
	dateTo       string

	// Stats flags
	statsPeriod   string
	statsTimezone string

	// Update flags
	newDestination string
	newAlias       string
	newTitle       string
	newDescription string
	newDomainID    string
	newProjectID   string

	// Delete flags
	noConfirm bool
)

// linksCmd groups the link management commands
var linksCmd = &cobra.Command{
	Use:     "links",
	Aliases: []string{"link"},
	Short:   "Manage short links",
}

var linksListCmd = &cobra.Command{
	Use:   "list",
	Short: "List short links",
	Long: `List short links one page at a time, or every link with --all.

A filter expression (--filter) or a named filter from the config (--preset)
fetches every link and keeps the ones matching, for example:

  elnk links list --filter 'Clicks > 100 and hasDomain("example.com")'`,
	Args: cobra.NoArgs,
	RunE: runLinksList,
}

var linksGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show a short link",
	Args:  cobra.ExactArgs(1),
	RunE:  runLinksGet,
}

var linksUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a short link",
	Long:  `Update the destination, alias, title, description, domain or project of a link. Only the given flags are changed.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runLinksUpdate,
}

var linksDeleteCmd = &cobra.Command{
	Use:   "delete <id> [id...]",
	Short: "Delete short links",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runLinksDelete,
}

var linksStatsCmd = &cobra.Command{
	Use:   "stats <id>",
	Short: "Show statistics for a short link",
	Args:  cobra.ExactArgs(1),
	RunE:  runLinksStats,
}

var linksSearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search short links",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runLinksSearch,
}

var linksFindCmd = &cobra.Command{
	Use:   "find <short-url>",
	Short: "Find a link by its short URL or alias",
	Args:  cobra.ExactArgs(1),
	RunE:  runLinksFind,
}

func init() {
	rootCmd.AddCommand(linksCmd)
	linksCmd.AddCommand(linksListCmd, linksGetCmd, linksUpdateCmd, linksDeleteCmd, linksStatsCmd, linksSearchCmd, linksFindCmd)

	linksListCmd.Flags().StringVarP(&filterExpr, "filter", "f", "", "filter expression")
	linksListCmd.Flags().StringVarP(&preset, "preset", "p", "", "use a named filter from config")
	linksListCmd.Flags().BoolVar(&listAll, "all", false, "fetch every page")
	linksListCmd.Flags().IntVar(&page, "page", 1, "page number")
	linksListCmd.Flags().IntVar(&limit, "limit", 25, "links per page")
	linksListCmd.Flags().StringVar(&search, "search", "", "search term")
	linksListCmd.Flags().StringVar(&sortBy, "sort", "", "sort field")
	linksListCmd.Flags().StringVar(&sortOrder, "order", "", "sort order (asc or desc)")
	linksListCmd.MarkFlagsMutuallyExclusive("filter", "preset")

	linksSearchCmd.Flags().StringVar(&searchDomain, "domain", "", "only links on this domain")
	linksSearchCmd.Flags().StringVar(&searchTag, "tag", "", "only links with this tag")
	linksSearchCmd.Flags().StringVar(&dateFrom, "from", "", "created on or after (YYYY-MM-DD)")
	linksSearchCmd.Flags().StringVar(&dateTo, "to", "", "created on or before (YYYY-MM-DD)")
	linksSearchCmd.Flags().IntVar(&page, "page", 1, "page number")
	linksSearchCmd.Flags().IntVar(&limit, "limit", 25, "links per page")

	linksStatsCmd.Flags().StringVar(&statsPeriod, "period", "", "statistics period (e.g. 7d, 30d)")
	linksStatsCmd.Flags().StringVar(&statsTimezone, "timezone", "", "timezone for the statistics")

	linksUpdateCmd.Flags().StringVar(&newDestination, "destination", "", "new destination URL")
	linksUpdateCmd.Flags().StringVar(&newAlias, "alias", "", "new alias")
	linksUpdateCmd.Flags().StringVar(&newTitle, "title", "", "new title")
	linksUpdateCmd.Flags().StringVar(&newDescription, "description", "", "new description")
	linksUpdateCmd.Flags().StringVar(&newDomainID, "domain-id", "", "move the link to this domain")
	linksUpdateCmd.Flags().StringVar(&newProjectID, "project-id", "", "move the link to this project")

	linksDeleteCmd.Flags().BoolVarP(&noConfirm, "yes", "y", false, "skip confirmation prompt")
}

func runLinksList(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	p := newPrinter(cmd)

	expr, err := getFilterExpression()
	if err != nil {
		return err
	}

	if expr == "" && !listAll {
		result, err := client.ListLinks(ctx, elnk.ListOptions{
			Page:   page,
			Limit:  limit,
			Search: search,
			Sort:   sortBy,
			Order:  sortOrder,
		})
		return render(p, result, err, printLinkPage)
	}

	links, err := client.ListAllLinks(ctx, limit)
	if err == nil && expr != "" {
		logger.Info().Str("filter", expr).Int("links", len(links)).Msg("Filtering links")
		links, err = filters.Apply(ctx, expr, links)
		if err != nil {
			err = fmt.Errorf("invalid filter expression: %w", err)
		}
	}

	return render(p, links, err, printLinks)
}

func printLinkPage(w io.Writer, result *elnk.LinkPage) {
	printLinks(w, result.Links)
	if pg := result.Pagination; pg != nil && pg.TotalPages > 0 {
		fmt.Fprintf(w, "\nPage %d of %d", pg.CurrentPage, pg.TotalPages)
		if pg.Total > 0 {
			fmt.Fprintf(w, " (%d links)", pg.Total)
		}
		fmt.Fprintln(w)
	}
}

func runLinksGet(cmd *cobra.Command, args []string) error {
	link, err := client.GetLink(commandContext(cmd), elnk.ID(args[0]))
	return render(newPrinter(cmd), link, err, func(w io.Writer, link *elnk.Link) {
		printLink(w, *link)
		if link.Description != "" {
			fmt.Fprintf(w, "  Description: %s\n", link.Description)
		}
	})
}

func runLinksUpdate(cmd *cobra.Command, args []string) error {
	var update elnk.LinkUpdate

	flags := cmd.Flags()
	if flags.Changed("destination") {
		update.Destination = &newDestination
	}
	if flags.Changed("alias") {
		update.Alias = &newAlias
	}
	if flags.Changed("title") {
		update.Title = &newTitle
	}
	if flags.Changed("description") {
		update.Description = &newDescription
	}
	if flags.Changed("domain-id") {
		id := elnk.ID(newDomainID)
		update.DomainID = &id
	}
	if flags.Changed("project-id") {
		id := elnk.ID(newProjectID)
		update.ProjectID = &id
	}

	if update.Destination != nil {
		if v := elnk.ValidateURL(*update.Destination, elnk.DefaultURLOptions()); !v.Valid {
			return fmt.Errorf("invalid destination %q: %s", *update.Destination, v.Error)
		}
	}

	link, err := client.UpdateLink(commandContext(cmd), elnk.ID(args[0]), update)
	return render(newPrinter(cmd), link, err, func(w io.Writer, link *elnk.Link) {
		fmt.Fprintln(w, "✓ Link updated")
		printLink(w, *link)
	})
}

func runLinksDelete(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	p := newPrinter(cmd)

	ids := make([]elnk.ID, len(args))
	for i, arg := range args {
		ids[i] = elnk.ID(arg)
	}

	if !noConfirm {
		if p.asJSON {
			return fmt.Errorf("--yes is required with --output json")
		}
		if !confirm(cmd, fmt.Sprintf("Delete %d link(s): %s?", len(ids), strings.Join(args, ", "))) {
			logger.Info().Msg("Deletion cancelled")
			return nil
		}
	}

	if len(ids) == 1 {
		err := client.DeleteLink(ctx, ids[0])
		if err == nil {
			forgetHistory(cmd, ids[0])
		}
		if p.asJSON {
			if err != nil {
				return render(p, struct{}{}, err, nil)
			}
			return p.writeJSON(elnk.Succeeded("Link deleted successfully"))
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(p.out, "✓ Deleted link %s\n", ids[0])
		return nil
	}

	result, err := client.BulkDeleteLinks(ctx, ids)
	if err == nil {
		for _, deleted := range result.Successful {
			forgetHistory(cmd, deleted.LinkID)
		}
	}

	if err := render(p, result, err, func(w io.Writer, result *elnk.BulkResult[elnk.DeletedLink]) {
		for _, deleted := range result.Successful {
			fmt.Fprintf(w, "  ✓ Deleted link %s\n", deleted.LinkID)
		}
		printBulkSummary(w, result)
	}); err != nil {
		return err
	}
	if !result.Success() {
		return fmt.Errorf("%d of %d deletions failed", result.ErrorCount, result.Total)
	}
	return nil
}

func forgetHistory(cmd *cobra.Command, id elnk.ID) {
	if store == nil {
		return
	}
	if _, err := store.Remove(commandContext(cmd), id); err != nil {
		logger.Warn().Err(err).Str("link_id", id.String()).Msg("Failed to remove link from history")
	}
}

// confirm asks a yes/no question on the command's input
func confirm(cmd *cobra.Command, question string) bool {
	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N]: ", question)

	response, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	return strings.ToLower(strings.TrimSpace(response)) == "y"
}

func runLinksStats(cmd *cobra.Command, args []string) error {
	stats, err := client.GetLinkStats(commandContext(cmd), elnk.ID(args[0]), elnk.StatsOptions{
		Period:   statsPeriod,
		Timezone: statsTimezone,
	})
	return render(newPrinter(cmd), stats, err, func(w io.Writer, stats elnk.Stats) {
		fmt.Fprintf(w, "Statistics for link %s:\n", args[0])
		fmt.Fprintf(w, "- Clicks: %d\n", stats.Clicks())
		for _, key := range slices.Sorted(maps.Keys(stats)) {
			if key == "clicks" {
				continue
			}
			fmt.Fprintf(w, "- %s: %v\n", key, stats[key])
		}
	})
}

func runLinksSearch(cmd *cobra.Command, args []string) error {
	opts := elnk.SearchOptions{
		Domain: searchDomain,
		Tag:    searchTag,
		Page:   page,
		Limit:  limit,
	}
	if len(args) > 0 {
		opts.Query = args[0]
	}

	var err error
	if opts.DateFrom, err = parseDate(dateFrom); err != nil {
		return err
	}
	if opts.DateTo, err = parseDate(dateTo); err != nil {
		return err
	}

	result, err := client.SearchLinks(commandContext(cmd), opts)
	return render(newPrinter(cmd), result, err, printLinkPage)
}

func parseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", value)
	}
	return t, nil
}

func runLinksFind(cmd *cobra.Command, args []string) error {
	shortURL := args[0]
	if !strings.Contains(shortURL, "://") {
		// A bare alias resolves against the short link base
		shortURL, _ = client.ConstructShortURL(elnk.Link{Alias: strings.Trim(shortURL, "/")})
	}

	link, err := client.FindLinkByURL(commandContext(cmd), shortURL)
	return render(newPrinter(cmd), link, err, func(w io.Writer, link *elnk.Link) {
		printLink(w, *link)
	})
}

// getFilterExpression determines the filter expression to use
func getFilterExpression() (string, error) {
	// Priority: command line filter > preset
	if filterExpr != "" {
		return filterExpr, nil
	}

	if preset != "" {
		if _, ok := filters.GetFilter(preset); ok {
			return preset, nil
		}
		return "", fmt.Errorf("preset '%s' not found in config (available: %s)", preset, strings.Join(filters.ListFilters(), ", "))
	}

	return "", nil
}
