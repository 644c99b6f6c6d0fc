// Package kvstore implements the service repositories on top of a
// storage.KV. Each repository owns one key and serializes its
// read-modify-write cycles; there are no cross-key transactions.
package kvstore
