package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"gsc-go/internal/gsc"
	"gsc-go/internal/database/migrations"
	"gsc-go/internal/model"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteDatabase implements the gsc.Database interface using SQLite.
type SQLiteDatabase struct {
	db   *sql.DB
	path string
}

// NewSQLiteDatabase creates a new SQLite database connection.
// path can be a file path or ":memory:" for an in-memory database.
func NewSQLiteDatabase(path string) (*SQLiteDatabase, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}

	return &SQLiteDatabase{
		db:   db,
		path: path,
	}, nil
}

// OpenConnection opens and configures a SQLite database connection.
// Exported for tests and tools that need a properly configured connection.
// path can be a file path or ":memory:" for an in-memory database.
//
// DSN parameters: foreign keys ON (SQLite defaults to OFF), a busy timeout
// so concurrent writers wait for locks instead of failing, and immediate
// transaction locking so a multi-row insert takes the write lock at BEGIN —
// two concurrent multi-row inserts can never interleave partially.
func OpenConnection(path string) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000&_txlock=immediate", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if path == ":memory:" {
		// Each pooled connection would otherwise get its own empty
		// in-memory database.
		db.SetMaxOpenConns(1)
	}

	return db, nil
}

// Migrate applies all pending schema migrations. Safe to run repeatedly.
func (s *SQLiteDatabase) Migrate() error {
	return migrations.MigrateUp(s.db)
}

// CheckMigrations verifies the database schema is up-to-date.
func (s *SQLiteDatabase) CheckMigrations() error {
	return migrations.CheckDBMigrationStatus(s.db)
}

// Game metadata operations

func (s *SQLiteDatabase) AddGameMetadata(meta *model.GameMetadataCreate) (*model.GameMetadata, error) {
	ctx := context.Background()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO game_metadata (steam_appid, default_name) VALUES (?, ?)`,
		toNullString(meta.SteamAppID), meta.DefaultName)
	if err != nil {
		return nil, fmt.Errorf("inserting game metadata: %w", err)
	}

	// The generated id comes straight from the insert statement — no
	// separate "latest row" lookup that could race with another writer.
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("resolving inserted game id: %w", err)
	}
	if id <= 0 {
		return nil, fmt.Errorf("inserted game metadata has no usable id")
	}

	for _, name := range meta.KnownNames {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO game_alt_name (name, game_metadata_id) VALUES (?, ?)`,
			name, id); err != nil {
			return nil, fmt.Errorf("inserting alt name %q: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}

	return &model.GameMetadata{ID: id, GameMetadataCreate: *meta}, nil
}

func (s *SQLiteDatabase) GetGameMetadataByName(name string) ([]model.GameMetadata, error) {
	ctx := context.Background()

	// Wrapped in a transaction so the metadata rows and their alt names
	// come from one consistent snapshot.
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx,
		`SELECT id, steam_appid, default_name FROM game_metadata WHERE default_name = ?`, name)
	if err != nil {
		return nil, fmt.Errorf("finding games by name: %w", err)
	}

	metaRows, err := scanGameMetadataRows(rows)
	if err != nil {
		return nil, err
	}

	games := make([]model.GameMetadata, 0, len(metaRows))
	for i := range metaRows {
		if !metaRows[i].id.Valid {
			continue
		}
		names, err := altNames(ctx, tx, metaRows[i].id.Int64)
		if err != nil {
			return nil, err
		}
		games = append(games, metaRows[i].toModel(names))
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}
	return games, nil
}

func (s *SQLiteDatabase) GetGameMetadataByID(id int64) (*model.GameMetadata, error) {
	ctx := context.Background()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	var r gameMetadataRow
	err = tx.QueryRowContext(ctx,
		`SELECT id, steam_appid, default_name FROM game_metadata WHERE id = ?`, id).
		Scan(&r.id, &r.steamAppID, &r.defaultName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil // Not found
	}
	if err != nil {
		return nil, fmt.Errorf("finding game by id: %w", err)
	}
	if !r.id.Valid {
		// Invariant violation: a row without a resolvable id is treated as
		// absent, never returned with a broken id.
		return nil, nil
	}

	names, err := altNames(ctx, tx, r.id.Int64)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}

	game := r.toModel(names)
	return &game, nil
}

func (s *SQLiteDatabase) GetAllGameMetadata() ([]model.GameMetadata, error) {
	ctx := context.Background()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx,
		`SELECT id, steam_appid, default_name FROM game_metadata`)
	if err != nil {
		return nil, fmt.Errorf("listing games: %w", err)
	}

	metaRows, err := scanGameMetadataRows(rows)
	if err != nil {
		return nil, err
	}

	games := make([]model.GameMetadata, 0, len(metaRows))
	for i := range metaRows {
		if !metaRows[i].id.Valid {
			continue
		}
		names, err := altNames(ctx, tx, metaRows[i].id.Int64)
		if err != nil {
			return nil, err
		}
		games = append(games, metaRows[i].toModel(names))
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}
	return games, nil
}

// Save path operations

func (s *SQLiteDatabase) AddGamePath(gameID int64, path *model.SavePathCreate) (*model.SavePath, error) {
	code, err := encodeOS(path.OS)
	if err != nil {
		return nil, err
	}

	res, err := s.db.ExecContext(context.Background(),
		`INSERT INTO game_path (path, operating_system, game_metadata_id) VALUES (?, ?, ?)`,
		path.Path, code, gameID)
	if err != nil {
		return nil, fmt.Errorf("inserting game path: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("resolving inserted path id: %w", err)
	}

	return &model.SavePath{ID: id, SavePathCreate: *path}, nil
}

func (s *SQLiteDatabase) GetPathsByGameIDAndOS(gameID int64, os model.OS) ([]string, error) {
	code, err := encodeOS(os)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(context.Background(),
		`SELECT path FROM game_path WHERE game_metadata_id = ? AND operating_system = ?`,
		gameID, code)
	if err != nil {
		return nil, fmt.Errorf("finding paths by game and os: %w", err)
	}
	return scanStrings(rows)
}

func (s *SQLiteDatabase) GetPathsByGameID(gameID int64) ([]model.SavePath, error) {
	rows, err := s.db.QueryContext(context.Background(),
		`SELECT id, path, operating_system FROM game_path WHERE game_metadata_id = ?`, gameID)
	if err != nil {
		return nil, fmt.Errorf("finding paths by game: %w", err)
	}
	defer rows.Close()

	var paths []model.SavePath
	for rows.Next() {
		var (
			id     int64
			path   string
			osCode string
		)
		if err := rows.Scan(&id, &path, &osCode); err != nil {
			return nil, fmt.Errorf("scanning game path: %w", err)
		}
		os, err := model.OSFromCode(osCode)
		if err != nil {
			return nil, fmt.Errorf("decoding path %d: %w", id, err)
		}
		paths = append(paths, model.SavePath{
			ID:             id,
			SavePathCreate: model.SavePathCreate{Path: path, OS: os},
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading game paths: %w", err)
	}
	return paths, nil
}

// Executable operations

func (s *SQLiteDatabase) AddGameExecutable(gameID int64, exe *model.ExecutableCreate) (*model.Executable, error) {
	code, err := encodeOS(exe.OS)
	if err != nil {
		return nil, err
	}

	res, err := s.db.ExecContext(context.Background(),
		`INSERT INTO game_executable (executable, operating_system, game_metadata_id) VALUES (?, ?, ?)`,
		exe.Executable, code, gameID)
	if err != nil {
		return nil, fmt.Errorf("inserting game executable: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("resolving inserted executable id: %w", err)
	}

	return &model.Executable{ID: id, ExecutableCreate: *exe}, nil
}

func (s *SQLiteDatabase) GetExecutablesByGameIDAndOS(gameID int64, os model.OS) ([]string, error) {
	code, err := encodeOS(os)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(context.Background(),
		`SELECT executable FROM game_executable WHERE game_metadata_id = ? AND operating_system = ?`,
		gameID, code)
	if err != nil {
		return nil, fmt.Errorf("finding executables by game and os: %w", err)
	}
	return scanStrings(rows)
}

func (s *SQLiteDatabase) GetExecutablesByGameID(gameID int64) ([]model.Executable, error) {
	rows, err := s.db.QueryContext(context.Background(),
		`SELECT id, executable, operating_system FROM game_executable WHERE game_metadata_id = ?`, gameID)
	if err != nil {
		return nil, fmt.Errorf("finding executables by game: %w", err)
	}
	defer rows.Close()

	var exes []model.Executable
	for rows.Next() {
		var (
			id         int64
			executable string
			osCode     string
		)
		if err := rows.Scan(&id, &executable, &osCode); err != nil {
			return nil, fmt.Errorf("scanning game executable: %w", err)
		}
		os, err := model.OSFromCode(osCode)
		if err != nil {
			return nil, fmt.Errorf("decoding executable %d: %w", id, err)
		}
		exes = append(exes, model.Executable{
			ID:               id,
			ExecutableCreate: model.ExecutableCreate{Executable: executable, OS: os},
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading game executables: %w", err)
	}
	return exes, nil
}

// Save history operations

func (s *SQLiteDatabase) AddSaveReference(uuid string, pathID int64, files []model.FileHash, at time.Time) error {
	ctx := context.Background()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	// A duplicate uuid fails here (primary key violation), rolling back the
	// whole snapshot. The catalog never deduplicates caller-supplied uuids.
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO game_save (uuid, path_id, time) VALUES (?, ?, ?)`,
		uuid, pathID, toUnixSeconds(at)); err != nil {
		return fmt.Errorf("inserting game save %s: %w", uuid, err)
	}

	for _, fh := range files {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO file_hash (relative_path, hash, game_save_uuid) VALUES (?, ?, ?)`,
			fh.RelativePath, fh.Hash, uuid); err != nil {
			return fmt.Errorf("inserting file hash %q: %w", fh.RelativePath, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func (s *SQLiteDatabase) GetSaveReferencesByPathID(pathID int64) ([]model.SaveReference, error) {
	ctx := context.Background()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx,
		`SELECT uuid, path_id, time FROM game_save WHERE path_id = ?`, pathID)
	if err != nil {
		return nil, fmt.Errorf("finding saves by path: %w", err)
	}

	type saveRow struct {
		uuid   string
		pathID int64
		sec    int64
	}
	var saveRows []saveRow
	for rows.Next() {
		var r saveRow
		if err := rows.Scan(&r.uuid, &r.pathID, &r.sec); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning game save: %w", err)
		}
		saveRows = append(saveRows, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading game saves: %w", err)
	}
	rows.Close()

	if len(saveRows) == 0 {
		return nil, nil // No saves for this path
	}

	// Each save's manifest is fetched keyed by its own uuid, so two saves
	// for the same path can never cross-contaminate.
	refs := make([]model.SaveReference, 0, len(saveRows))
	for _, sr := range saveRows {
		files, err := fileHashes(ctx, tx, sr.uuid)
		if err != nil {
			return nil, err
		}
		refs = append(refs, model.SaveReference{
			UUID:      sr.uuid,
			PathID:    sr.pathID,
			Time:      fromUnixSeconds(sr.sec),
			FilesHash: files,
		})
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}
	return refs, nil
}

// Operation tracking

func (s *SQLiteDatabase) CreateCatalogOperation(operation, parameters string) (*model.CatalogOperation, error) {
	startedAt := time.Now().UTC()
	res, err := s.db.ExecContext(context.Background(),
		`INSERT INTO catalog_operations (started_at, operation, parameters, status) VALUES (?, ?, ?, '')`,
		startedAt, operation, parameters)
	if err != nil {
		return nil, fmt.Errorf("creating catalog operation: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("resolving operation id: %w", err)
	}

	return &model.CatalogOperation{
		ID:         id,
		StartedAt:  startedAt,
		Operation:  operation,
		Parameters: parameters,
	}, nil
}

func (s *SQLiteDatabase) FinishCatalogOperation(id int64, status string) error {
	_, err := s.db.ExecContext(context.Background(),
		`UPDATE catalog_operations SET finished_at = ?, status = ? WHERE id = ?`,
		time.Now().UTC(), status, id)
	if err != nil {
		return fmt.Errorf("finishing catalog operation: %w", err)
	}
	return nil
}

func (s *SQLiteDatabase) MaxCatalogOperationID() (int64, error) {
	var id int64
	err := s.db.QueryRowContext(context.Background(),
		`SELECT COALESCE(MAX(id), 0) FROM catalog_operations`).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("getting max catalog operation id: %w", err)
	}
	return id, nil
}

// Path returns the database file path (or ":memory:" for in-memory databases).
func (s *SQLiteDatabase) Path() string {
	return s.path
}

// BackupTo creates a complete copy of the database at destPath using VACUUM INTO.
func (s *SQLiteDatabase) BackupTo(destPath string) error {
	if _, err := s.db.Exec("VACUUM INTO ?", destPath); err != nil {
		return fmt.Errorf("backing up database: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteDatabase) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// altNames loads the alternate names owned by one game_metadata row.
func altNames(ctx context.Context, q querier, gameID int64) ([]string, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT name FROM game_alt_name WHERE game_metadata_id = ?`, gameID)
	if err != nil {
		return nil, fmt.Errorf("finding alt names: %w", err)
	}
	return scanStrings(rows)
}

// fileHashes loads the manifest owned by one game_save row.
func fileHashes(ctx context.Context, q querier, saveUUID string) ([]model.FileHash, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT relative_path, hash FROM file_hash WHERE game_save_uuid = ?`, saveUUID)
	if err != nil {
		return nil, fmt.Errorf("finding file hashes: %w", err)
	}
	defer rows.Close()

	var files []model.FileHash
	for rows.Next() {
		var fh model.FileHash
		if err := rows.Scan(&fh.RelativePath, &fh.Hash); err != nil {
			return nil, fmt.Errorf("scanning file hash: %w", err)
		}
		files = append(files, fh)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading file hashes: %w", err)
	}
	return files, nil
}

func scanGameMetadataRows(rows *sql.Rows) ([]gameMetadataRow, error) {
	defer rows.Close()

	var out []gameMetadataRow
	for rows.Next() {
		var r gameMetadataRow
		if err := rows.Scan(&r.id, &r.steamAppID, &r.defaultName); err != nil {
			return nil, fmt.Errorf("scanning game metadata: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading game metadata: %w", err)
	}
	return out, nil
}

func scanStrings(rows *sql.Rows) ([]string, error) {
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading rows: %w", err)
	}
	return out, nil
}

// Compile-time check that SQLiteDatabase implements the gsc.Database interface
var _ gsc.Database = (*SQLiteDatabase)(nil)
