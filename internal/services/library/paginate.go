// Package library implements the paginated aggregation paths over the user's
// listening data: liked-track month scans, genre-filtered discovery,
// exhaustive audio-feature fetches and artist-genre resolution.
package library

import "context"

// Page is one fetched window of a paginated source.
type Page[T any] struct {
	Items []T
	Total int
	// Fetched is the raw window size before any in-fetch filtering. Zero
	// means Items was not filtered and len(Items) is the raw size.
	Fetched int
}

func (p Page[T]) fetched() int {
	if p.Fetched > 0 {
		return p.Fetched
	}
	return len(p.Items)
}

// FetchPage fetches one window of a paginated source.
type FetchPage[T any] func(ctx context.Context, limit, offset int) (Page[T], error)

// CollectOptions tunes a CollectPages run.
type CollectOptions struct {
	// PageSize is the fixed window size per fetch.
	PageSize int
	// StartOffset is the initial offset, used to diversify discovery scans.
	StartOffset int
}

// CollectPages repeatedly fetches fixed-size pages, keeping the items that
// pass keep, until the stop predicate fires or the source is exhausted. The
// predicate sees the current page's contribution in collected, so a threshold
// met mid-page ends the scan without another fetch. An empty page is treated
// as exhaustion rather than an error so unexpected upstream responses cannot
// loop forever. For a finite total the loop makes at most
// ceil(total/pageSize) fetches.
func CollectPages[T any](ctx context.Context, fetch FetchPage[T], opts CollectOptions, keep func(T) bool, stop func(page Page[T], collected []T) bool) ([]T, error) {
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	var collected []T
	for offset := opts.StartOffset; ; offset += pageSize {
		page, err := fetch(ctx, pageSize, offset)
		if err != nil {
			return collected, err
		}
		if page.fetched() == 0 {
			return collected, nil
		}

		for _, item := range page.Items {
			if keep == nil || keep(item) {
				collected = append(collected, item)
			}
		}

		if stop != nil && stop(page, collected) {
			return collected, nil
		}

		if page.Total > 0 && offset+pageSize >= page.Total {
			return collected, nil
		}
		if page.fetched() < pageSize {
			return collected, nil
		}
	}
}
