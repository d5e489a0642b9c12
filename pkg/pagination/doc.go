// Package pagination fetches every page of an offset/limit paginated collection.
//
// The Gamma API pages its collections with limit/offset query parameters and
// returns a JSON array per page; a page shorter than the requested limit means
// there is nothing after it. The paginator works in two phases:
//
//   - Discovery: page 0 is fetched on its own. An error here fails the whole
//     fetch. An empty or short page 0 ends the fetch immediately.
//   - Fan-out: pages 1..min(maxPages, PageCap)-1 are requested concurrently,
//     then aggregated in ascending offset order. A failed page is logged and
//     skipped, and aggregation continues with the next one. The first short
//     page ends aggregation; anything fetched after it is discarded.
//
// Example usage:
//
//	p := pagination.NewPaginator(gammaClient, pagination.DefaultConfig())
//	markets, err := p.FetchAll(ctx, "/markets", pagination.Filter{"active": true}, 100, 10)
//
// The result is best effort. Use Run instead of FetchAll to see which pages
// failed.
package pagination
