// Package rnes holds the sentinel errors shared across the core so
// callers can errors.Is against a stable taxonomy instead of matching on
// error strings. It intentionally has no other dependents-facing
// surface: domain types live with their owning packages.
package rnes

import "errors"

// Load errors: the ROM is invalid or the core cannot start for it.
var (
	ErrBadMagic        = errors.New("rnes: not an iNES file")
	ErrEmptyPRG        = errors.New("rnes: PRG ROM size is zero")
	ErrUnsupportedMapper = errors.New("rnes: unsupported mapper")
	ErrTruncatedROM    = errors.New("rnes: ROM file truncated")
)

// Snapshot errors: the saved state cannot be restored.
var (
	ErrSnapshotVersion  = errors.New("rnes: snapshot version mismatch")
	ErrSnapshotChecksum = errors.New("rnes: snapshot checksum mismatch")
	ErrSnapshotTruncated = errors.New("rnes: snapshot truncated")
)
