// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "errors"

// Error kinds shared across stages. Callers wrap them with context using
// fmt.Errorf("...: %w", ErrX) and test for them with errors.Is.
var (
	// ErrParseContract reports an upstream document whose shape no longer
	// matches what the parser expects (wrong cell count, conflicting
	// duplicate species, unrecognised accession link).
	ErrParseContract = errors.New("parse contract violation")

	// ErrTableFormat reports a malformed line in a persisted index table.
	ErrTableFormat = errors.New("table format violation")

	// ErrDataContract reports a catalog record missing a required field.
	ErrDataContract = errors.New("data contract violation")

	// ErrTransport reports an HTTP or FTP failure, including non-2xx replies.
	ErrTransport = errors.New("transport failure")

	// ErrNoSnapshot reports that no local catalog snapshot exists yet.
	ErrNoSnapshot = errors.New("no local catalog snapshot")
)
