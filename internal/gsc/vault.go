package gsc

import "io"

// Vault stores versioned catalog snapshots offsite. Snapshots are opaque
// bytes to the vault (they are encrypted before upload).
type Vault interface {
	// PutSnapshot stores the catalog snapshot for a host. size is the number
	// of bytes that will be read from r. version is stored alongside the
	// snapshot for consistency checks.
	PutSnapshot(hostID string, r io.Reader, size int64, version int64) error

	// GetSnapshot retrieves the catalog snapshot for a host and writes it to w.
	GetSnapshot(hostID string, w io.Writer) error

	// GetSnapshotVersion returns the stored snapshot version for a host.
	// Returns 0 if no snapshot has been stored.
	GetSnapshotVersion(hostID string) (int64, error)

	// ValidateSetup verifies that the vault is accessible and properly configured.
	ValidateSetup() error
}
