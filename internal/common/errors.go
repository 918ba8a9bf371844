// Package common defines shared sentinel errors used across the
// reconciliation core and its store adapters. Callers should use errors.Is
// to match these values.
package common

import "errors"

var (
	// ErrNotFound is returned by store adapters when a record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnavailable is returned by remote adapters when the backing service
	// cannot be reached or answers with a transport-level failure.
	ErrUnavailable = errors.New("store unavailable")
)
