package elnk

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
)

// BulkResult contains the outcome of a bulk operation. Items are reported in
// input order.
type BulkResult[T any] struct {
	Successful   []T         `json:"successful"`
	Failed       []BulkError `json:"failed"`
	Total        int         `json:"total"`
	SuccessCount int         `json:"successCount"`
	ErrorCount   int         `json:"errorCount"`
}

// Success reports whether every item succeeded
func (r *BulkResult[T]) Success() bool {
	return r.ErrorCount == 0
}

// BulkError describes one failed item of a bulk operation
type BulkError struct {
	Index      int    `json:"index"`
	Input      string `json:"input"`
	Message    string `json:"error"`
	StatusCode int    `json:"statusCode,omitempty"`
	Err        error  `json:"-"`
}

// Error implements the error interface
func (e BulkError) Error() string {
	return fmt.Sprintf("item %d (%s): %s", e.Index, e.Input, e.Message)
}

// Unwrap returns the underlying failure
func (e BulkError) Unwrap() error {
	return e.Err
}

// DeletedLink is the successful item type of BulkDeleteLinks
type DeletedLink struct {
	LinkID ID `json:"linkId"`
}

type indexed[T any] struct {
	index int
	value T
}

// collector gathers fan-out results from concurrent goroutines
type collector[T any] struct {
	mu        sync.Mutex
	succeeded []indexed[T]
	failed    []BulkError
}

func (c *collector[T]) success(index int, value T) {
	c.mu.Lock()
	c.succeeded = append(c.succeeded, indexed[T]{index: index, value: value})
	c.mu.Unlock()
}

func (c *collector[T]) failure(index int, input string, err error) {
	c.mu.Lock()
	c.failed = append(c.failed, BulkError{
		Index:      index,
		Input:      input,
		Message:    ErrorMessage(err),
		StatusCode: StatusCode(err),
		Err:        err,
	})
	c.mu.Unlock()
}

func (c *collector[T]) result(total int) *BulkResult[T] {
	sort.Slice(c.succeeded, func(i, j int) bool { return c.succeeded[i].index < c.succeeded[j].index })
	sort.Slice(c.failed, func(i, j int) bool { return c.failed[i].Index < c.failed[j].Index })

	result := &BulkResult[T]{
		Successful: make([]T, 0, len(c.succeeded)),
		Failed:     c.failed,
		Total:      total,
	}
	if result.Failed == nil {
		result.Failed = []BulkError{}
	}
	for _, item := range c.succeeded {
		result.Successful = append(result.Successful, item.value)
	}
	result.SuccessCount = len(result.Successful)
	result.ErrorCount = len(result.Failed)
	return result
}

// CreateBulkShortURLs shortens every URL concurrently. With a baseAlias, the
// i-th URL gets alias "<baseAlias>-<i+1>", or baseAlias itself when there is
// only one URL. Blank entries are skipped but still count towards Total.
func (c *Client) CreateBulkShortURLs(ctx context.Context, urls []string, baseAlias string) (*BulkResult[ShortLink], error) {
	if len(urls) == 0 {
		return nil, invalidArgument("URLs list is required and cannot be empty")
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)

	var results collector[ShortLink]

	for i, raw := range urls {
		target := strings.TrimSpace(raw)
		if target == "" {
			continue
		}

		alias := ""
		if baseAlias != "" {
			alias = baseAlias
			if len(urls) > 1 {
				alias = fmt.Sprintf("%s-%d", baseAlias, i+1)
			}
		}

		g.Go(func() error {
			short, err := c.CreateShortURL(ctx, target, alias)
			if err != nil {
				c.logger.Warn().Err(err).Str("url", target).Msg("Failed to create short URL")
				results.failure(i, target, err)
				return nil // Don't stop on individual errors
			}
			results.success(i, *short)
			return nil
		})
	}

	_ = g.Wait()

	result := results.result(len(urls))
	c.logger.Info().
		Int("total", result.Total).
		Int("successful", result.SuccessCount).
		Int("failed", result.ErrorCount).
		Msg("Bulk short URL creation finished")

	return result, nil
}

// BulkDeleteLinks deletes every link concurrently
func (c *Client) BulkDeleteLinks(ctx context.Context, linkIDs []ID) (*BulkResult[DeletedLink], error) {
	if len(linkIDs) == 0 {
		return nil, invalidArgument("link IDs list is required and cannot be empty")
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)

	var results collector[DeletedLink]

	for i, linkID := range linkIDs {
		g.Go(func() error {
			if err := c.DeleteLink(ctx, linkID); err != nil {
				results.failure(i, linkID.String(), err)
				return nil
			}
			results.success(i, DeletedLink{LinkID: linkID})
			return nil
		})
	}

	_ = g.Wait()

	return results.result(len(linkIDs)), nil
}
