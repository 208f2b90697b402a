// Package library_test provides unit tests for the paginated aggregation
// paths.
package library_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/groovebot/groove-service/internal/services/library"
)

// sliceFetcher pages over a fixed item list and counts fetches.
func sliceFetcher(items []int) (library.FetchPage[int], *int) {
	fetches := new(int)
	fetch := func(_ context.Context, limit, offset int) (library.Page[int], error) {
		*fetches++
		if offset >= len(items) {
			return library.Page[int]{Total: len(items)}, nil
		}
		end := offset + limit
		if end > len(items) {
			end = len(items)
		}
		return library.Page[int]{Items: items[offset:end], Total: len(items)}, nil
	}
	return fetch, fetches
}

func TestCollectPages_CollectsEverything(t *testing.T) {
	items := make([]int, 120)
	for i := range items {
		items[i] = i
	}
	fetch, fetches := sliceFetcher(items)

	got, err := library.CollectPages(context.Background(), fetch, library.CollectOptions{PageSize: 50}, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, items, got)
	assert.Equal(t, 3, *fetches, "ceil(120/50) fetches")
}

func TestCollectPages_TerminationBound(t *testing.T) {
	// For any finite total the loop makes at most ceil(total/limit) fetches.
	for _, total := range []int{0, 1, 49, 50, 51, 250} {
		items := make([]int, total)
		fetch, fetches := sliceFetcher(items)

		_, err := library.CollectPages(context.Background(), fetch, library.CollectOptions{PageSize: 50}, nil, nil)
		require.NoError(t, err)

		bound := (total + 49) / 50
		if bound == 0 {
			bound = 1
		}
		assert.LessOrEqual(t, *fetches, bound, "total=%d", total)
	}
}

func TestCollectPages_EmptyPageMeansExhausted(t *testing.T) {
	// A page with no items terminates the loop even when the advertised
	// total claims more, so malformed responses cannot loop forever.
	fetches := 0
	fetch := func(context.Context, int, int) (library.Page[int], error) {
		fetches++
		return library.Page[int]{Total: 10_000}, nil
	}

	got, err := library.CollectPages(context.Background(), fetch, library.CollectOptions{PageSize: 50}, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, 1, fetches)
}

func TestCollectPages_StopPredicate(t *testing.T) {
	items := make([]int, 500)
	for i := range items {
		items[i] = i
	}
	fetch, fetches := sliceFetcher(items)

	stop := func(page library.Page[int], _ []int) bool {
		return page.Items[0] >= 100
	}

	got, err := library.CollectPages(context.Background(), fetch, library.CollectOptions{PageSize: 50}, nil, stop)
	require.NoError(t, err)

	assert.Len(t, got, 150, "the page that fired the stop still contributes")
	assert.Equal(t, 3, *fetches)
}

func TestCollectPages_StopSeesCurrentPage(t *testing.T) {
	// The predicate runs after the page's items are folded in, so a threshold
	// cleared mid-scan never costs an extra fetch.
	items := make([]int, 500)
	for i := range items {
		items[i] = i
	}
	fetch, fetches := sliceFetcher(items)

	stop := func(_ library.Page[int], collected []int) bool {
		return len(collected) >= 80
	}

	got, err := library.CollectPages(context.Background(), fetch, library.CollectOptions{PageSize: 50}, nil, stop)
	require.NoError(t, err)

	assert.Len(t, got, 100)
	assert.Equal(t, 2, *fetches, "no fetch beyond the page that cleared the threshold")
}

func TestCollectPages_KeepFilter(t *testing.T) {
	items := make([]int, 100)
	for i := range items {
		items[i] = i
	}
	fetch, _ := sliceFetcher(items)

	keep := func(v int) bool { return v%2 == 0 }

	got, err := library.CollectPages(context.Background(), fetch, library.CollectOptions{PageSize: 50}, keep, nil)
	require.NoError(t, err)
	assert.Len(t, got, 50)
}

func TestCollectPages_StartOffset(t *testing.T) {
	items := make([]int, 100)
	for i := range items {
		items[i] = i
	}
	fetch, _ := sliceFetcher(items)

	got, err := library.CollectPages(context.Background(), fetch, library.CollectOptions{PageSize: 50, StartOffset: 50}, nil, nil)
	require.NoError(t, err)

	require.Len(t, got, 50)
	assert.Equal(t, 50, got[0])
}

func TestCollectPages_FetchErrorPropagates(t *testing.T) {
	wantErr := errors.New("boom")
	fetch := func(context.Context, int, int) (library.Page[int], error) {
		return library.Page[int]{}, wantErr
	}

	_, err := library.CollectPages(context.Background(), fetch, library.CollectOptions{}, nil, nil)
	assert.ErrorIs(t, err, wantErr)
}

func TestCollectPages_FilteredPageDoesNotEndScan(t *testing.T) {
	// A page whose items were all filtered out in-fetch reports its raw size
	// via Fetched; an empty Items slice alone must not read as exhaustion.
	fetches := 0
	fetch := func(_ context.Context, limit, offset int) (library.Page[int], error) {
		fetches++
		if offset >= 100 {
			return library.Page[int]{}, nil
		}
		if offset == 0 {
			// Everything on the first page was filtered out.
			return library.Page[int]{Fetched: limit, Total: 100}, nil
		}
		return library.Page[int]{Items: []int{offset}, Fetched: limit, Total: 100}, nil
	}

	got, err := library.CollectPages(context.Background(), fetch, library.CollectOptions{PageSize: 50}, nil, nil)
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, 50, got[0])
	assert.Equal(t, 2, fetches)
}
