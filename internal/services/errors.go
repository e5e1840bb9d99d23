// Package services implements the household-scoped ledger engine:
// tenancy resolution, split allocation, transaction lifecycle and
// dashboard aggregation, composed over the storage repositories.
package services

import "errors"

var (
	// ErrDenied is the merged not-found/forbidden outcome. Every guarded
	// operation returns it both when the target does not exist and when
	// the caller is not a member of its household, so callers cannot
	// probe for records across households.
	ErrDenied = errors.New("not found")

	// ErrValidation marks rejected input: bad splits, household
	// mismatches, malformed fields.
	ErrValidation = errors.New("validation failed")

	// ErrCorruptState marks a consistency violation, such as a user
	// whose household reference points at a missing record. It is never
	// repaired silently.
	ErrCorruptState = errors.New("inconsistent ledger state")
)
