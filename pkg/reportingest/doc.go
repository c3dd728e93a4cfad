// Package reportingest implements the upload pipeline for user-submitted
// report images: validate the artifact, store the bytes in a blob store,
// commit the report metadata in a transactional record store, and publish a
// notification event to a message broker.
//
// The pipeline coordinates three independently failing external systems
// without a distributed transaction. A successful blob upload followed by a
// failed metadata commit leaves an orphaned blob; this is a known and
// accepted gap (there is no reconciliation pass). Publishing is best-effort
// with bounded retries: a publish failure is logged and never changes the
// outcome of an upload that has already committed.
//
// The Service is assembled from explicitly constructed collaborators
// (Repository, BlobStore, EventPublisher) via functional options:
//
//	svc, err := reportingest.New(
//	    reportingest.WithRepository(repo),
//	    reportingest.WithBlobStore(store),
//	    reportingest.WithPublisher(pub),
//	)
package reportingest
