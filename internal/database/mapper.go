package database

// Entity mapping between the storage row representation and the domain
// records. The mapping is lossless in both directions for the fields the
// catalog owns: NULL steam appids round-trip as nil pointers, OS tags go
// through the model's versioned code table, and snapshot times are stored
// as unix seconds in UTC.

import (
	"database/sql"
	"fmt"
	"time"

	"gsc-go/internal/model"
)

// gameMetadataRow mirrors one game_metadata row. The id is scanned as
// nullable: a row with a NULL id violates a catalog invariant and is
// treated as not-found by the callers, never surfaced with a broken id.
type gameMetadataRow struct {
	id          sql.NullInt64
	steamAppID  sql.NullString
	defaultName string
}

func (r *gameMetadataRow) toModel(knownNames []string) model.GameMetadata {
	return model.GameMetadata{
		ID: r.id.Int64,
		GameMetadataCreate: model.GameMetadataCreate{
			KnownNames:  knownNames,
			SteamAppID:  fromNullString(r.steamAppID),
			DefaultName: r.defaultName,
		},
	}
}

func toNullString(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}

func fromNullString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

// encodeOS maps an OS value to its stored code, rejecting values outside
// the closed set before they reach the database.
func encodeOS(os model.OS) (string, error) {
	if !os.Valid() {
		return "", fmt.Errorf("invalid operating system: %v", os)
	}
	return os.Code(), nil
}

func toUnixSeconds(t time.Time) int64 {
	return t.UTC().Unix()
}

func fromUnixSeconds(sec int64) time.Time {
	return time.Unix(sec, 0).UTC()
}
