package elnk

import (
	"context"
)

// API defines the elnk operations, for callers that want to substitute the client in tests
type API interface {
	// TestConnection verifies the client can reach elnk with its key
	TestConnection(ctx context.Context) (*User, error)
	GetUser(ctx context.Context) (*User, error)

	CreateShortURL(ctx context.Context, originalURL, customAlias string) (*ShortLink, error)
	CreateShortURLWithRetry(ctx context.Context, originalURL, customAlias string, opts RetryOptions) (*ShortLink, error)
	EnsureShortURL(ctx context.Context, originalURL, customAlias string) (*ShortLink, error)
	CreateBulkShortURLs(ctx context.Context, urls []string, baseAlias string) (*BulkResult[ShortLink], error)

	GetLink(ctx context.Context, linkID ID) (*Link, error)
	UpdateLink(ctx context.Context, linkID ID, update LinkUpdate) (*Link, error)
	DeleteLink(ctx context.Context, linkID ID) error
	BulkDeleteLinks(ctx context.Context, linkIDs []ID) (*BulkResult[DeletedLink], error)
	GetLinkStats(ctx context.Context, linkID ID, opts StatsOptions) (Stats, error)

	ListLinks(ctx context.Context, opts ListOptions) (*LinkPage, error)
	ListAllLinks(ctx context.Context, limit int) ([]Link, error)
	SearchLinks(ctx context.Context, opts SearchOptions) (*LinkPage, error)
	FindLinkByURL(ctx context.Context, shortURL string) (*Link, error)

	GetDomains(ctx context.Context) ([]Domain, error)
	GetDomain(ctx context.Context, domainID ID) (*Domain, error)

	ConstructShortURL(link Link) (string, bool)
}

var _ API = (*Client)(nil)
