package gsc

import (
	"time"

	"gsc-go/internal/model"
)

// Database is the catalog storage contract. Every multi-row operation is a
// single transaction: either all rows exist afterwards, or none do. Lookups
// report absence with a nil result, not an error.
type Database interface {
	// Game metadata operations

	// AddGameMetadata inserts game metadata plus all of its alternate names
	// in one transaction and returns the record with its assigned id.
	AddGameMetadata(meta *model.GameMetadataCreate) (*model.GameMetadata, error)

	// GetGameMetadataByName returns every game whose display name matches
	// name exactly, alternate names hydrated. Result order is unspecified.
	GetGameMetadataByName(name string) ([]model.GameMetadata, error)

	// GetGameMetadataByID returns the game with the given id, or nil when it
	// does not exist.
	GetGameMetadataByID(id int64) (*model.GameMetadata, error)

	// GetAllGameMetadata returns the full catalog, alternate names hydrated.
	// Intended for small catalogs; there is no pagination.
	GetAllGameMetadata() ([]model.GameMetadata, error)

	// Save path and executable operations

	// AddGamePath registers a save location for an existing game.
	AddGamePath(gameID int64, path *model.SavePathCreate) (*model.SavePath, error)

	// GetPathsByGameIDAndOS returns the save location strings for one game
	// on one OS. Only exact OS matches are returned.
	GetPathsByGameIDAndOS(gameID int64, os model.OS) ([]string, error)

	// GetPathsByGameID returns all save locations for a game across OSes.
	GetPathsByGameID(gameID int64) ([]model.SavePath, error)

	// AddGameExecutable registers an executable location for an existing game.
	AddGameExecutable(gameID int64, exe *model.ExecutableCreate) (*model.Executable, error)

	// GetExecutablesByGameIDAndOS returns the executable location strings
	// for one game on one OS.
	GetExecutablesByGameIDAndOS(gameID int64, os model.OS) ([]string, error)

	// GetExecutablesByGameID returns all executable locations for a game
	// across OSes.
	GetExecutablesByGameID(gameID int64) ([]model.Executable, error)

	// Save history operations

	// AddSaveReference records one save snapshot: a game_save row plus one
	// file_hash row per manifest entry, in a single transaction. An empty
	// manifest is valid. uuid is caller-supplied and must be unique; a
	// duplicate fails the whole transaction, leaving nothing behind.
	AddSaveReference(uuid string, pathID int64, files []model.FileHash, at time.Time) error

	// GetSaveReferencesByPathID returns every snapshot recorded for a save
	// path, each with its own manifest, or nil when the path has none.
	GetSaveReferencesByPathID(pathID int64) ([]model.SaveReference, error)

	// Operation tracking

	// CreateCatalogOperation records the start of a mutating operation,
	// giving it an auto-increment id.
	CreateCatalogOperation(operation, parameters string) (*model.CatalogOperation, error)

	// FinishCatalogOperation stamps an operation with its finish time and status.
	FinishCatalogOperation(id int64, status string) error

	// MaxCatalogOperationID returns the highest recorded operation id, or 0.
	MaxCatalogOperationID() (int64, error)

	// CheckMigrations verifies the schema is at the latest version.
	CheckMigrations() error

	// Path returns the storage location, for diagnostics.
	Path() string

	// BackupTo writes a consistent copy of the database to destPath.
	BackupTo(destPath string) error

	// Close closes the database connection.
	Close() error
}
