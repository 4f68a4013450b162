package elnk

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ID identifies a link, domain or project. The API sends identifiers both as
// JSON numbers and as strings, so ID accepts either and keeps the string form.
type ID string

// UnmarshalJSON implements json.Unmarshaler
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid id %s: %w", data, err)
	}
	*id = ID(n.String())
	return nil
}

// String returns the identifier as sent in URL paths
func (id ID) String() string {
	return string(id)
}

// IsZero reports whether the id is unset. The API uses 0 for "no domain".
func (id ID) IsZero() bool {
	return id == "" || id == "0"
}

// Timestamp is a creation/update time as sent by the API, which uses either
// RFC 3339 or "2006-01-02 15:04:05".
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// UnmarshalJSON implements json.Unmarshaler
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(bytes.TrimSpace(data)), `"`)
	if s == "" || s == "null" {
		t.Time = time.Time{}
		return nil
	}

	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}

	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		t.Time = time.Unix(secs, 0).UTC()
		return nil
	}

	return fmt.Errorf("unrecognised timestamp %q", s)
}

// MarshalJSON implements json.Marshaler
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.UTC().Format(time.RFC3339))
}

// Link is a short link as returned by the API
type Link struct {
	ID          ID        `json:"id"`
	Alias       string    `json:"url"`
	Destination string    `json:"destination,omitempty"`
	LocationURL string    `json:"location_url,omitempty"`
	Type        string    `json:"type,omitempty"`
	DomainID    ID        `json:"domain_id,omitempty"`
	ProjectID   ID        `json:"project_id,omitempty"`
	Title       string    `json:"title,omitempty"`
	Description string    `json:"description,omitempty"`
	Clicks      int64     `json:"clicks"`
	CreatedAt   Timestamp `json:"created_at"`
	UpdatedAt   Timestamp `json:"updated_at"`
}

// Target returns where the link redirects to
func (l *Link) Target() string {
	if l.Destination != "" {
		return l.Destination
	}
	return l.LocationURL
}

// ShortLink is the result of creating a short URL
type ShortLink struct {
	ID          ID        `json:"id"`
	OriginalURL string    `json:"originalUrl"`
	ShortURL    string    `json:"shortUrl,omitempty"`
	CustomAlias string    `json:"customAlias,omitempty"`
	Clicks      int64     `json:"clicks"`
	CreatedAt   time.Time `json:"createdAt"`
	// Existing is set by EnsureShortURL when the link was found rather than created.
	Existing bool `json:"existing,omitempty"`
}

// LinkUpdate holds the fields to change on a link. Nil fields are left untouched.
type LinkUpdate struct {
	Destination *string `json:"destination,omitempty"`
	Alias       *string `json:"url,omitempty"`
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	DomainID    *ID     `json:"domain_id,omitempty"`
	ProjectID   *ID     `json:"project_id,omitempty"`
}

// IsEmpty reports whether the update would change nothing
func (u LinkUpdate) IsEmpty() bool {
	return u.Destination == nil && u.Alias == nil && u.Title == nil &&
		u.Description == nil && u.DomainID == nil && u.ProjectID == nil
}

// createLinkRequest is the body of POST /links
type createLinkRequest struct {
	Destination string `json:"destination"`
	Type        string `json:"type"`
	DomainID    string `json:"domain_id,omitempty"`
	ProjectID   string `json:"project_id,omitempty"`
	Alias       string `json:"url,omitempty"`
}

// Stats holds link statistics. The shape depends on the requested period,
// so it is kept as decoded JSON.
type Stats map[string]any

// Clicks returns the total click count if the API reported one
func (s Stats) Clicks() int64 {
	switch v := s["clicks"].(type) {
	case float64:
		return int64(v)
	case json.Number:
		n, _ := v.Int64()
		return n
	default:
		return 0
	}
}

// Domain is a custom domain registered on the account
type Domain struct {
	ID        ID        `json:"id"`
	Domain    string    `json:"domain,omitempty"`
	Host      string    `json:"host,omitempty"`
	Scheme    string    `json:"scheme,omitempty"`
	Status    string    `json:"status,omitempty"`
	CreatedAt Timestamp `json:"created_at"`
}

// Name returns the domain's host name
func (d *Domain) Name() string {
	if d.Domain != "" {
		return d.Domain
	}
	return d.Host
}

// User is the account that owns the API key
type User struct {
	ID    ID     `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	Type  string `json:"type,omitempty"`
}

// Pagination describes a page of list results
type Pagination struct {
	CurrentPage int `json:"current_page"`
	TotalPages  int `json:"total_pages"`
	PerPage     int `json:"per_page,omitempty"`
	Total       int `json:"total,omitempty"`
}

// HasMorePages checks if there are more pages to fetch
func (p *Pagination) HasMorePages() bool {
	return p != nil && p.CurrentPage < p.TotalPages
}

// LinkPage is one page of links
type LinkPage struct {
	Links      []Link      `json:"data"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// ListOptions controls GET /links
type ListOptions struct {
	Page   int
	Limit  int
	Search string
	Sort   string
	Order  string
}

// SearchOptions controls GET /links/search
type SearchOptions struct {
	Query    string
	Domain   string
	Tag      string
	DateFrom time.Time
	DateTo   time.Time
	Page     int
	Limit    int
}

// StatsOptions controls GET /links/:id/stats
type StatsOptions struct {
	Period   string
	Timezone string
}

// Settings is the client configuration without the API key
type Settings struct {
	DomainID  string        `json:"domainId,omitempty"`
	ProjectID string        `json:"projectId,omitempty"`
	Timeout   time.Duration `json:"timeout"`
	BaseURL   string        `json:"baseUrl"`
}
