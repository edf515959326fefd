package graph

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
)

// Page is one response of a collection endpoint. NextLink is the opaque
// cursor to the next page; empty when the collection is exhausted.
type Page struct {
	Value    []json.RawMessage `json:"value"`
	NextLink string            `json:"@odata.nextLink"`
}

// FetchAll drives cursor pagination until the collection is exhausted
// and returns the concatenation of all pages in fetch order. A consumed
// cursor is never requested again. An empty first page yields an empty
// slice and no error; callers map that to their own no-data sentinel.
func (c *Client) FetchAll(ctx context.Context, rawURL string) ([]json.RawMessage, error) {
	var records []json.RawMessage
	next := rawURL
	for next != "" {
		var page Page
		if err := c.get(ctx, next, &page); err != nil {
			return nil, fmt.Errorf("fetching page: %w", err)
		}
		records = append(records, page.Value...)
		next = page.NextLink
	}
	return records, nil
}

// FetchAllAs decodes every record of a paginated collection into T.
func FetchAllAs[T any](ctx context.Context, c *Client, rawURL string) ([]T, error) {
	raw, err := c.FetchAll(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(raw))
	for i, r := range raw {
		var v T
		if err := json.Unmarshal(r, &v); err != nil {
			return nil, fmt.Errorf("decoding record %d: %w", i, err)
		}
		out = append(out, v)
	}
	return out, nil
}
