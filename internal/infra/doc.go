// Package infra groups the storage adapters behind the snapshot and blob
// contracts.
package infra
