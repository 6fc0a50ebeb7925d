// Package ledger implements the append-only interaction log. The Postgres
// store is the durable production backend; the in-memory store serves
// single-run and test use.
package ledger
