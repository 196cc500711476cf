package app

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"gsc-go/internal/config"
	"gsc-go/internal/database"
	"gsc-go/internal/encryption"
	"gsc-go/internal/gsc"
	"gsc-go/internal/model"
	"gsc-go/internal/vault"
)

// App is the application layer between the CLI and the CatalogService.
// It constructs all dependencies from config, exposes operations that
// accept raw string input, and owns the DB lifecycle: the storage handle
// is created here and passed down explicitly — there is no ambient global
// state, so shutdown is fully caller-controlled via Close.
type App struct {
	cfg       *config.Config
	db        gsc.Database
	vault     gsc.Vault
	encryptor gsc.Encryptor
	service   *gsc.CatalogService
	op        *Operation
	logFile   *os.File
}

// NewApp creates a fully wired App from the given config. operation
// identifies the CLI command being run (e.g. "AddGame", "RecordSave").
// Pending schema migrations are applied before the App is returned.
// The caller must call Close when done.
func NewApp(cfg *config.Config, operation string) (*App, error) {
	db, err := database.NewDatabaseFromConfig(cfg.Database, cfg.HostID)
	if err != nil {
		return nil, fmt.Errorf("creating database: %w", err)
	}

	// Snapshot mirroring is optional: with no vault configured the catalog
	// is local-only.
	var v gsc.Vault
	if len(cfg.Vaults) > 0 {
		v, err = vault.NewVaultFromConfig(cfg.Vaults[0])
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("creating vault: %w", err)
		}

		// Check the local catalog version against the vault snapshot.
		remoteVersion, err := v.GetSnapshotVersion(cfg.HostID)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("checking remote snapshot version: %w", err)
		}

		localMax, err := db.MaxCatalogOperationID()
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("checking local catalog version: %w", err)
		}

		if remoteVersion > localMax {
			db.Close()
			return nil, fmt.Errorf("local catalog is behind vault snapshot (local=%d, remote=%d): fetch the snapshot or re-initialize", localMax, remoteVersion)
		}
	}

	enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating encryptor: %w", err)
	}

	opID := time.Now().UTC().Format("20060102T150405Z")
	logger, logFile, err := newLogger(cfg.LogDir, opID)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	svc := gsc.NewCatalogService(db, &slogAdapter{l: logger}, gsc.RealClock{}, gsc.UUIDGenerator{})
	op := NewOperation(operation, "")

	return &App{
		cfg:       cfg,
		db:        db,
		vault:     v,
		encryptor: enc,
		service:   svc,
		op:        op,
		logFile:   logFile,
	}, nil
}

// persistOperation saves the operation to the database, giving it an
// auto-increment ID. Called only by catalog-mutating commands.
func (a *App) persistOperation() error {
	if a.op.Persisted() {
		return nil // already persisted
	}
	dbOp, err := a.db.CreateCatalogOperation(a.op.Operation, a.op.Parameters)
	if err != nil {
		return fmt.Errorf("persisting catalog operation: %w", err)
	}
	a.op.ID = dbOp.ID
	return nil
}

// MarkFailed records that the current operation ended in error.
func (a *App) MarkFailed() {
	a.op.Status = "error"
}

// AddGame registers a game with its aliases. An empty steamAppID means the
// game has no Steam identifier.
func (a *App) AddGame(defaultName, steamAppID string, aliases []string) (*model.GameMetadata, error) {
	if err := a.persistOperation(); err != nil {
		return nil, err
	}

	create := &model.GameMetadataCreate{
		KnownNames:  aliases,
		DefaultName: defaultName,
	}
	if steamAppID != "" {
		create.SteamAppID = &steamAppID
	}
	return a.service.AddGame(create)
}

// FindGames returns all games whose display name matches exactly.
func (a *App) FindGames(name string) ([]model.GameMetadata, error) {
	return a.service.FindGamesByName(name)
}

// GetGame returns a game by id, or nil when no such game exists.
func (a *App) GetGame(id int64) (*model.GameMetadata, error) {
	return a.service.GetGame(id)
}

// ListGames returns the full catalog.
func (a *App) ListGames() ([]model.GameMetadata, error) {
	return a.service.ListGames()
}

// AddSavePath registers a save location for a game on the given OS.
func (a *App) AddSavePath(gameID int64, path, osCode string) (*model.SavePath, error) {
	if err := a.persistOperation(); err != nil {
		return nil, err
	}

	os, err := model.OSFromCode(osCode)
	if err != nil {
		return nil, err
	}
	return a.service.AddSavePath(gameID, &model.SavePathCreate{Path: path, OS: os})
}

// AddExecutable registers an executable location for a game on the given OS.
func (a *App) AddExecutable(gameID int64, executable, osCode string) (*model.Executable, error) {
	if err := a.persistOperation(); err != nil {
		return nil, err
	}

	os, err := model.OSFromCode(osCode)
	if err != nil {
		return nil, err
	}
	return a.service.AddExecutable(gameID, &model.ExecutableCreate{Executable: executable, OS: os})
}

// SavePathsForOS returns the save locations for a game on one OS.
func (a *App) SavePathsForOS(gameID int64, osCode string) ([]string, error) {
	os, err := model.OSFromCode(osCode)
	if err != nil {
		return nil, err
	}
	return a.service.SavePathsForOS(gameID, os)
}

// SavePaths returns all save locations for a game across OSes.
func (a *App) SavePaths(gameID int64) ([]model.SavePath, error) {
	return a.service.SavePaths(gameID)
}

// ExecutablesForOS returns the executable locations for a game on one OS.
func (a *App) ExecutablesForOS(gameID int64, osCode string) ([]string, error) {
	os, err := model.OSFromCode(osCode)
	if err != nil {
		return nil, err
	}
	return a.service.ExecutablesForOS(gameID, os)
}

// Executables returns all executable locations for a game across OSes.
func (a *App) Executables(gameID int64) ([]model.Executable, error) {
	return a.service.Executables(gameID)
}

// RecordSave records one save snapshot for a path. If uuid is empty a new
// one is generated. Returns the uuid used.
func (a *App) RecordSave(uuid string, pathID int64, files []model.FileHash) (string, error) {
	if err := a.persistOperation(); err != nil {
		return "", err
	}
	return a.service.RecordSave(uuid, pathID, files)
}

// SaveHistory returns every snapshot recorded for a save path, or nil when
// the path has none.
func (a *App) SaveHistory(pathID int64) ([]model.SaveReference, error) {
	return a.service.SaveHistory(pathID)
}

// Status reports the catalog location and verifies the schema is at the
// latest version.
func (a *App) Status() (string, error) {
	path := a.db.Path()
	if err := a.db.CheckMigrations(); err != nil {
		return path, fmt.Errorf("checking schema: %w", err)
	}
	return path, nil
}

// SetupEncryption generates the snapshot encryption key pair.
func (a *App) SetupEncryption(passphrase string) error {
	return a.encryptor.Setup(passphrase)
}

// ValidateVault verifies that the configured vault is reachable.
func (a *App) ValidateVault() error {
	if a.vault == nil {
		return fmt.Errorf("no vault configured")
	}
	return a.vault.ValidateSetup()
}

// FetchSnapshot downloads the latest catalog snapshot from the vault,
// decrypts it with the passphrase-unlocked private key, and writes it to
// destPath.
func (a *App) FetchSnapshot(destPath, passphrase string) error {
	if a.vault == nil {
		return fmt.Errorf("no vault configured")
	}

	ctx, err := a.encryptor.Unlock(passphrase)
	if err != nil {
		return fmt.Errorf("unlocking private key: %w", err)
	}

	var encrypted bytes.Buffer
	if err := a.vault.GetSnapshot(a.cfg.HostID, &encrypted); err != nil {
		return fmt.Errorf("fetching snapshot: %w", err)
	}

	f, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("creating snapshot file: %w", err)
	}
	defer f.Close()

	if err := ctx.Decrypt(&encrypted, f); err != nil {
		return fmt.Errorf("decrypting snapshot: %w", err)
	}
	return nil
}

// Close finalizes the operation and closes all resources. For persisted
// operations with a vault configured: finishes the operation record,
// snapshots the catalog, encrypts it, and uploads it with version =
// operation ID. For everything else: just closes the database.
func (a *App) Close() error {
	var firstErr error

	if a.op.Persisted() {
		if err := a.db.FinishCatalogOperation(a.op.ID, a.op.Status); err != nil {
			firstErr = fmt.Errorf("finishing catalog operation: %w", err)
		}

		// Snapshot the DB to a temp file, but only when there is somewhere
		// to put it: no vault or no encryption keys means no upload, so
		// producing the snapshot would be wasted work.
		var tmpPath string
		if a.vault != nil && a.encryptor.IsConfigured() {
			tmpFile, err := os.CreateTemp("", "gsc-snapshot-*.db")
			if err != nil {
				if firstErr == nil {
					firstErr = fmt.Errorf("creating temp file for snapshot: %w", err)
				}
			} else {
				tmpPath = tmpFile.Name()
				tmpFile.Close()

				if err := a.db.BackupTo(tmpPath); err != nil {
					if firstErr == nil {
						firstErr = fmt.Errorf("snapshotting database: %w", err)
					}
					os.Remove(tmpPath)
					tmpPath = "" // skip vault upload
				}
			}
		}

		if err := a.db.Close(); err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("closing database: %w", err)
			}
		}

		if tmpPath != "" {
			if err := a.uploadSnapshot(tmpPath, a.op.ID); err != nil {
				if firstErr == nil {
					firstErr = err
				}
			}
			os.Remove(tmpPath)
		}
	} else {
		// Non-mutating operation: just close the database, no upload.
		if err := a.db.Close(); err != nil {
			firstErr = fmt.Errorf("closing database: %w", err)
		}
	}

	if a.logFile != nil {
		a.logFile.Close()
	}

	return firstErr
}

// uploadSnapshot encrypts the snapshot file and uploads it to the vault.
func (a *App) uploadSnapshot(path string, version int64) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening snapshot for upload: %w", err)
	}
	defer f.Close()

	var encrypted bytes.Buffer
	if err := a.encryptor.Encrypt(f, &encrypted); err != nil {
		return fmt.Errorf("encrypting snapshot: %w", err)
	}

	size := int64(encrypted.Len())
	if err := a.vault.PutSnapshot(a.cfg.HostID, &encrypted, size, version); err != nil {
		return fmt.Errorf("uploading snapshot to vault: %w", err)
	}
	return nil
}
