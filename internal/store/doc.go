// Package store persists user identities and OAuth credential blobs.
//
// The Repository interface keeps the storage engine swappable and mockable;
// the SQLite implementation mirrors the deployment default of a single
// database file holding one user row and at most one credential blob per
// email.
package store
