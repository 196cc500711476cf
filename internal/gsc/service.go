package gsc

import (
	"fmt"

	"gsc-go/internal/model"
)

// CatalogService is the orchestration layer over the catalog database. It
// validates input, stamps snapshot times, and logs, but never decides when
// to back up or how to diff snapshots — callers tell it what to record.
type CatalogService struct {
	database Database
	logger   Logger
	clock    Clock
	idgen    IDGenerator
}

// NewCatalogService creates a new CatalogService with the provided dependencies.
func NewCatalogService(database Database, logger Logger, clock Clock, idgen IDGenerator) *CatalogService {
	return &CatalogService{
		database: database,
		logger:   logger,
		clock:    clock,
		idgen:    idgen,
	}
}

// AddGame registers a game together with all of its alternate names.
// The whole group is inserted atomically.
func (s *CatalogService) AddGame(meta *model.GameMetadataCreate) (*model.GameMetadata, error) {
	if meta.DefaultName == "" {
		return nil, fmt.Errorf("game needs a display name")
	}

	game, err := s.database.AddGameMetadata(meta)
	if err != nil {
		return nil, fmt.Errorf("adding game metadata: %w", err)
	}

	s.logger.Info("game added", "id", game.ID, "name", game.DefaultName, "alt_names", len(game.KnownNames))
	return game, nil
}

// FindGamesByName returns all games whose display name matches exactly.
// An empty result is not an error.
func (s *CatalogService) FindGamesByName(name string) ([]model.GameMetadata, error) {
	games, err := s.database.GetGameMetadataByName(name)
	if err != nil {
		return nil, fmt.Errorf("finding games by name: %w", err)
	}
	return games, nil
}

// GetGame returns a game by id, or nil when no such game exists.
func (s *CatalogService) GetGame(id int64) (*model.GameMetadata, error) {
	game, err := s.database.GetGameMetadataByID(id)
	if err != nil {
		return nil, fmt.Errorf("getting game %d: %w", id, err)
	}
	return game, nil
}

// ListGames returns the full catalog.
func (s *CatalogService) ListGames() ([]model.GameMetadata, error) {
	games, err := s.database.GetAllGameMetadata()
	if err != nil {
		return nil, fmt.Errorf("listing games: %w", err)
	}
	return games, nil
}

// AddSavePath registers where a game's save data lives on one OS.
func (s *CatalogService) AddSavePath(gameID int64, create *model.SavePathCreate) (*model.SavePath, error) {
	if create.Path == "" {
		return nil, fmt.Errorf("save path is empty")
	}
	if !create.OS.Valid() {
		return nil, fmt.Errorf("invalid operating system: %v", create.OS)
	}

	path, err := s.database.AddGamePath(gameID, create)
	if err != nil {
		return nil, fmt.Errorf("adding save path: %w", err)
	}

	s.logger.Info("save path added", "game_id", gameID, "path_id", path.ID, "os", path.OS)
	return path, nil
}

// AddExecutable registers where a game's executable lives on one OS.
func (s *CatalogService) AddExecutable(gameID int64, create *model.ExecutableCreate) (*model.Executable, error) {
	if create.Executable == "" {
		return nil, fmt.Errorf("executable path is empty")
	}
	if !create.OS.Valid() {
		return nil, fmt.Errorf("invalid operating system: %v", create.OS)
	}

	exe, err := s.database.AddGameExecutable(gameID, create)
	if err != nil {
		return nil, fmt.Errorf("adding executable: %w", err)
	}

	s.logger.Info("executable added", "game_id", gameID, "executable_id", exe.ID, "os", exe.OS)
	return exe, nil
}

// SavePathsForOS returns the save locations for a game on the given OS —
// the "where do saves live on the OS I am running on" query.
func (s *CatalogService) SavePathsForOS(gameID int64, os model.OS) ([]string, error) {
	if !os.Valid() {
		return nil, fmt.Errorf("invalid operating system: %v", os)
	}
	paths, err := s.database.GetPathsByGameIDAndOS(gameID, os)
	if err != nil {
		return nil, fmt.Errorf("getting save paths for os: %w", err)
	}
	return paths, nil
}

// SavePaths returns all registered save locations for a game, across OSes.
func (s *CatalogService) SavePaths(gameID int64) ([]model.SavePath, error) {
	paths, err := s.database.GetPathsByGameID(gameID)
	if err != nil {
		return nil, fmt.Errorf("getting save paths: %w", err)
	}
	return paths, nil
}

// ExecutablesForOS returns the executable locations for a game on one OS.
func (s *CatalogService) ExecutablesForOS(gameID int64, os model.OS) ([]string, error) {
	if !os.Valid() {
		return nil, fmt.Errorf("invalid operating system: %v", os)
	}
	exes, err := s.database.GetExecutablesByGameIDAndOS(gameID, os)
	if err != nil {
		return nil, fmt.Errorf("getting executables for os: %w", err)
	}
	return exes, nil
}

// Executables returns all registered executable locations for a game.
func (s *CatalogService) Executables(gameID int64) ([]model.Executable, error) {
	exes, err := s.database.GetExecutablesByGameID(gameID)
	if err != nil {
		return nil, fmt.Errorf("getting executables: %w", err)
	}
	return exes, nil
}

// RecordSave records one save snapshot for a path: the save reference plus
// the manifest of per-file content hashes, atomically. If uuid is empty a
// new one is generated; a supplied uuid must be globally unique, and a
// collision is surfaced as a storage error. Returns the uuid used.
func (s *CatalogService) RecordSave(uuid string, pathID int64, files []model.FileHash) (string, error) {
	if uuid == "" {
		uuid = s.idgen.New()
	}

	at := s.clock.Now().UTC()
	if err := s.database.AddSaveReference(uuid, pathID, files, at); err != nil {
		return "", fmt.Errorf("recording save %s: %w", uuid, err)
	}

	s.logger.Info("save recorded", "uuid", uuid, "path_id", pathID, "files", len(files))
	return uuid, nil
}

// SaveHistory returns every snapshot recorded for a save path, each with
// its own file manifest, or nil when the path has no saves.
func (s *CatalogService) SaveHistory(pathID int64) ([]model.SaveReference, error) {
	refs, err := s.database.GetSaveReferencesByPathID(pathID)
	if err != nil {
		return nil, fmt.Errorf("getting save history: %w", err)
	}
	return refs, nil
}
