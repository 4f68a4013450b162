package elnk

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	defaultPage  = 1
	defaultLimit = 25
	linkType     = "link"
	dateLayout   = "2006-01-02"
)

// CreateShortURL creates a short link for originalURL. An empty customAlias
// lets the API pick a random one.
func (c *Client) CreateShortURL(ctx context.Context, originalURL, customAlias string) (*ShortLink, error) {
	if originalURL == "" {
		return nil, invalidArgument("original URL is required")
	}

	c.mu.RLock()
	req := createLinkRequest{
		Destination: originalURL,
		Type:        linkType,
		DomainID:    c.domainID,
		ProjectID:   c.projectID,
		Alias:       customAlias,
	}
	c.mu.RUnlock()

	body, err := c.doRequest(ctx, http.MethodPost, "/links", "/links", nil, req)
	if err != nil {
		return nil, err
	}

	var created struct {
		ID ID `json:"id"`
	}
	if err := decodeData(body, &created); err != nil {
		// The link exists once the API answered 2xx
		c.logger.Warn().Err(err).Str("url", originalURL).Msg("Could not parse create response")
		created.ID = ""
	}

	short := &ShortLink{
		ID:          created.ID,
		OriginalURL: originalURL,
		CustomAlias: customAlias,
		CreatedAt:   time.Now().UTC(),
	}

	if created.ID == "" {
		c.logger.Warn().Str("url", originalURL).Msg("Create response carried no link id")
		return short, nil
	}

	// The create response only has the id; the slug comes from the details.
	link, err := c.GetLink(ctx, created.ID)
	if err != nil {
		c.logger.Warn().Err(err).Str("link_id", created.ID.String()).Msg("Failed to fetch created link details")
		return short, nil
	}

	short.Clicks = link.Clicks
	if !link.CreatedAt.IsZero() {
		short.CreatedAt = link.CreatedAt.Time
	}
	if shortURL, ok := c.ConstructShortURL(*link); ok {
		short.ShortURL = shortURL
	}

	c.logger.Debug().
		Str("link_id", short.ID.String()).
		Str("short_url", short.ShortURL).
		Msg("Created short URL")

	return short, nil
}

// EnsureShortURL returns the existing link pointing at originalURL, creating one
// only when none exists.
func (c *Client) EnsureShortURL(ctx context.Context, originalURL, customAlias string) (*ShortLink, error) {
	if originalURL == "" {
		return nil, invalidArgument("original URL is required")
	}

	links, err := c.ListAllLinks(ctx, 100)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing links: %w", err)
	}

	for _, link := range links {
		if link.Target() != originalURL {
			continue
		}

		existing := &ShortLink{
			ID:          link.ID,
			OriginalURL: originalURL,
			CustomAlias: link.Alias,
			Clicks:      link.Clicks,
			CreatedAt:   link.CreatedAt.Time,
			Existing:    true,
		}
		if shortURL, ok := c.ConstructShortURL(link); ok {
			existing.ShortURL = shortURL
		}
		return existing, nil
	}

	return c.CreateShortURL(ctx, originalURL, customAlias)
}

// GetLink retrieves a single link
func (c *Client) GetLink(ctx context.Context, linkID ID) (*Link, error) {
	if linkID == "" {
		return nil, invalidArgument("link ID is required")
	}

	body, err := c.doRequest(ctx, http.MethodGet, "/links/:id", linkPath(linkID), nil, nil)
	if err != nil {
		return nil, err
	}

	var link Link
	if err := decodeData(body, &link); err != nil {
		return nil, err
	}
	return &link, nil
}

// UpdateLink changes the given fields of a link and returns the updated record
func (c *Client) UpdateLink(ctx context.Context, linkID ID, update LinkUpdate) (*Link, error) {
	if linkID == "" {
		return nil, invalidArgument("link ID is required")
	}
	if update.IsEmpty() {
		return nil, invalidArgument("update data is required")
	}

	body, err := c.doRequest(ctx, http.MethodPut, "/links/:id", linkPath(linkID), nil, update)
	if err != nil {
		return nil, err
	}

	var link Link
	if err := decodeData(body, &link); err != nil {
		return nil, err
	}
	return &link, nil
}

// DeleteLink deletes a link
func (c *Client) DeleteLink(ctx context.Context, linkID ID) error {
	if linkID == "" {
		return invalidArgument("link ID is required")
	}

	if _, err := c.doRequest(ctx, http.MethodDelete, "/links/:id", linkPath(linkID), nil, nil); err != nil {
		return err
	}

	c.logger.Debug().Str("link_id", linkID.String()).Msg("Deleted link")
	return nil
}

// GetLinkStats retrieves click statistics for a link
func (c *Client) GetLinkStats(ctx context.Context, linkID ID, opts StatsOptions) (Stats, error) {
	if linkID == "" {
		return nil, invalidArgument("link ID is required")
	}

	params := url.Values{}
	if opts.Period != "" {
		params.Set("period", opts.Period)
	}
	if opts.Timezone != "" {
		params.Set("timezone", opts.Timezone)
	}

	body, err := c.doRequest(ctx, http.MethodGet, "/links/:id/stats", linkPath(linkID)+"/stats", params, nil)
	if err != nil {
		return nil, err
	}

	stats := Stats{}
	if err := decodeData(body, &stats); err != nil {
		return nil, err
	}
	return stats, nil
}

// ListLinks retrieves one page of links
func (c *Client) ListLinks(ctx context.Context, opts ListOptions) (*LinkPage, error) {
	params := pageParams(opts.Page, opts.Limit)
	if opts.Search != "" {
		params.Set("search", opts.Search)
	}
	if opts.Sort != "" {
		params.Set("sort", opts.Sort)
	}
	if opts.Order != "" {
		params.Set("order", opts.Order)
	}

	body, err := c.doRequest(ctx, http.MethodGet, "/links", "/links", params, nil)
	if err != nil {
		return nil, err
	}
	return decodeLinkPage(body)
}

// ListAllLinks walks every page of links, limit links per request
func (c *Client) ListAllLinks(ctx context.Context, limit int) ([]Link, error) {
	var all []Link
	page := defaultPage

	for {
		result, err := c.ListLinks(ctx, ListOptions{Page: page, Limit: limit})
		if err != nil {
			return nil, fmt.Errorf("failed to list links (page %d): %w", page, err)
		}
		all = append(all, result.Links...)

		c.logger.Debug().
			Int("page", page).
			Int("count", len(result.Links)).
			Int("total", len(all)).
			Msg("Retrieved links")

		if len(result.Links) == 0 || !result.Pagination.HasMorePages() {
			break
		}
		// Stop when the server does not advance through its pages
		if current := result.Pagination.CurrentPage; (current > 0 && current < page) || page >= result.Pagination.TotalPages {
			break
		}
		page++
	}

	return all, nil
}

// SearchLinks searches links by text, domain, tag and creation date range
func (c *Client) SearchLinks(ctx context.Context, opts SearchOptions) (*LinkPage, error) {
	params := url.Values{}
	if opts.Query != "" {
		params.Set("q", opts.Query)
	}
	if opts.Domain != "" {
		params.Set("domain", opts.Domain)
	}
	if opts.Tag != "" {
		params.Set("tag", opts.Tag)
	}
	if !opts.DateFrom.IsZero() {
		params.Set("date_from", opts.DateFrom.UTC().Format(dateLayout))
	}
	if !opts.DateTo.IsZero() {
		params.Set("date_to", opts.DateTo.UTC().Format(dateLayout))
	}
	for key, values := range pageParams(opts.Page, opts.Limit) {
		params[key] = values
	}

	body, err := c.doRequest(ctx, http.MethodGet, "/links/search", "/links/search", params, nil)
	if err != nil {
		return nil, err
	}
	return decodeLinkPage(body)
}

// FindLinkByURL resolves a full short URL such as https://elnk.pro/abc123
// back to its link record.
func (c *Client) FindLinkByURL(ctx context.Context, shortURL string) (*Link, error) {
	parsed, err := url.Parse(shortURL)
	if err != nil || parsed.Host == "" {
		return nil, invalidArgument("invalid short URL format")
	}
	slug := strings.Trim(parsed.Path, "/")
	if slug == "" {
		return nil, invalidArgument("invalid short URL format")
	}

	result, err := c.SearchLinks(ctx, SearchOptions{Query: slug})
	if err != nil {
		return nil, err
	}

	for i := range result.Links {
		link := result.Links[i]
		if link.Alias == slug {
			return &link, nil
		}
		if constructed, ok := c.ConstructShortURL(link); ok && constructed == shortURL {
			return &link, nil
		}
	}

	return nil, ErrNotFound
}

// ConstructShortURL builds the public short URL of a link. It reports false
// when the link has no slug.
func (c *Client) ConstructShortURL(link Link) (string, bool) {
	if link.Alias == "" {
		return "", false
	}
	// Custom domains are not resolved; every link is served from the short base.
	return c.shortBaseURL + "/" + link.Alias, true
}

func linkPath(linkID ID) string {
	return "/links/" + url.PathEscape(linkID.String())
}

func pageParams(page, limit int) url.Values {
	if page <= 0 {
		page = defaultPage
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	return url.Values{
		"page":  {strconv.Itoa(page)},
		"limit": {strconv.Itoa(limit)},
	}
}

func decodeLinkPage(body []byte) (*LinkPage, error) {
	page := &LinkPage{}
	if err := decodeData(body, &page.Links); err != nil {
		return nil, err
	}
	page.Pagination = decodePagination(body)
	return page, nil
}
