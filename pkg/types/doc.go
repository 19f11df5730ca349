// Package types defines the catalog entities (Book, Author, Catalog), the
// configuration shared by the storage backends, and the standard errors
// returned by the catalog, persistence, and reconciliation layers.
package types
