// Package pagination walks HepatoDB paged collections.
//
// Paged collections answer GET <path>?page=N&limit=10 with
// {"data": [...], "totalPages": N}. Collection always starts at page 1 and
// stops once the page counter passes the last reported total, so at least one
// request is made even when the server reports zero pages.
//
// Example usage:
//
//	records, err := pagination.Collect(ctx, hepatoClient, resource.ProteinInteraction,
//		resource.Query{resource.FilterDisease: "NAFLD"})
//	if errors.Is(err, pagination.ErrFetchFailed) {
//		// show "Error fetching data. Please try again."
//	}
//
// The package offers three ways to walk a collection:
//   - Iterator: explicit page-at-a-time stepping, restartable with Reset
//   - All: a lazy iter.Seq2 over records
//   - Collect / BatchFetcher.FetchAll: eager aggregation, sequential or with a
//     bounded worker pool
//
// All of them are all-or-nothing: a failure on any page discards every record
// gathered so far.
package pagination
