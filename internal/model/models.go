package model

import "time"

// GameMetadataCreate is the insert shape for a game: everything except the
// storage-assigned id.
type GameMetadataCreate struct {
	KnownNames  []string // alternate names the game is known by
	SteamAppID  *string  // optional external identifier
	DefaultName string   // display name
}

// GameMetadata is a cataloged game with its storage-assigned id.
type GameMetadata struct {
	ID int64
	GameMetadataCreate
}

// SavePathCreate describes where a game's save data lives on one OS.
type SavePathCreate struct {
	Path string
	OS   OS
}

// SavePath is a registered save location with its storage-assigned id.
type SavePath struct {
	ID int64
	SavePathCreate
}

// ExecutableCreate describes where a game's executable lives on one OS.
type ExecutableCreate struct {
	Executable string
	OS         OS
}

// Executable is a registered executable location with its storage-assigned id.
type Executable struct {
	ID int64
	ExecutableCreate
}

// FileHash records that a file at RelativePath (relative to the save path
// root) had content with the given digest at snapshot time.
type FileHash struct {
	RelativePath string
	Hash         string
}

// SaveReference is one backup event: a caller-supplied uuid, the save path
// it belongs to, when it was recorded (UTC), and the manifest of per-file
// content hashes. An empty manifest is a valid snapshot.
type SaveReference struct {
	UUID      string
	PathID    int64
	Time      time.Time
	FilesHash []FileHash
}

// CatalogOperation tracks one mutating CLI operation against the catalog.
// The max id doubles as the version of the catalog snapshot in the vault.
type CatalogOperation struct {
	ID         int64
	StartedAt  time.Time
	FinishedAt *time.Time
	Operation  string
	Parameters string
	Status     string // "success" or "error"
}
