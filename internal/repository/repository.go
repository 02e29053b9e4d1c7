// Package repository holds the GORM-backed stores the services depend on.
// Lookups that miss, including lookups by a malformed ID, return
// gorm.ErrRecordNotFound so callers can map it to their own not-found error.
package repository

import "errors"

// ErrStaleVersion is returned when a conditional write finds the row at a
// different version than the caller read.
var ErrStaleVersion = errors.New("repository: stale version")
