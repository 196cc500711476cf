package gsc_test

import (
	"testing"
	"time"

	"gsc-go/internal/gsc"
	"gsc-go/internal/model"
	"gsc-go/internal/testutil"
)

func newTestService(t *testing.T) (*gsc.CatalogService, gsc.Database) {
	t.Helper()

	db := testutil.NewTestDatabase(t)
	svc := gsc.NewCatalogService(
		db,
		gsc.NewNopLogger(),
		testutil.FixedClock{T: time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC)},
		&testutil.SequentialIDGenerator{},
	)
	return svc, db
}

func TestAddGameValidation(t *testing.T) {
	svc, _ := newTestService(t)

	if _, err := svc.AddGame(&model.GameMetadataCreate{}); err == nil {
		t.Error("game without display name accepted, want error")
	}

	game, err := svc.AddGame(&model.GameMetadataCreate{DefaultName: "Foo", KnownNames: []string{"F"}})
	if err != nil {
		t.Fatalf("AddGame: %v", err)
	}
	if game.ID <= 0 {
		t.Errorf("game id = %d, want > 0", game.ID)
	}
}

func TestAddSavePathValidation(t *testing.T) {
	svc, _ := newTestService(t)

	game, err := svc.AddGame(&model.GameMetadataCreate{DefaultName: "Foo"})
	if err != nil {
		t.Fatalf("AddGame: %v", err)
	}

	if _, err := svc.AddSavePath(game.ID, &model.SavePathCreate{Path: "", OS: model.Linux}); err == nil {
		t.Error("empty path accepted, want error")
	}
	if _, err := svc.AddSavePath(game.ID, &model.SavePathCreate{Path: "/save/foo", OS: model.OS(42)}); err == nil {
		t.Error("invalid os accepted, want error")
	}

	path, err := svc.AddSavePath(game.ID, &model.SavePathCreate{Path: "/save/foo", OS: model.Linux})
	if err != nil {
		t.Fatalf("AddSavePath: %v", err)
	}
	if path.ID <= 0 {
		t.Errorf("path id = %d, want > 0", path.ID)
	}
}

func TestAddExecutableValidation(t *testing.T) {
	svc, _ := newTestService(t)

	game, err := svc.AddGame(&model.GameMetadataCreate{DefaultName: "Foo"})
	if err != nil {
		t.Fatalf("AddGame: %v", err)
	}

	if _, err := svc.AddExecutable(game.ID, &model.ExecutableCreate{Executable: "", OS: model.Windows}); err == nil {
		t.Error("empty executable accepted, want error")
	}

	exe, err := svc.AddExecutable(game.ID, &model.ExecutableCreate{Executable: "foo.exe", OS: model.Windows})
	if err != nil {
		t.Fatalf("AddExecutable: %v", err)
	}

	got, err := svc.ExecutablesForOS(game.ID, model.Windows)
	if err != nil {
		t.Fatalf("ExecutablesForOS: %v", err)
	}
	if len(got) != 1 || got[0] != exe.Executable {
		t.Errorf("executables = %v, want [foo.exe]", got)
	}
}

func TestRecordSaveGeneratesUUID(t *testing.T) {
	svc, _ := newTestService(t)

	game, err := svc.AddGame(&model.GameMetadataCreate{DefaultName: "Foo"})
	if err != nil {
		t.Fatalf("AddGame: %v", err)
	}
	path, err := svc.AddSavePath(game.ID, &model.SavePathCreate{Path: "/save/foo", OS: model.Linux})
	if err != nil {
		t.Fatalf("AddSavePath: %v", err)
	}

	uuid, err := svc.RecordSave("", path.ID, []model.FileHash{{RelativePath: "s1.dat", Hash: "h1"}})
	if err != nil {
		t.Fatalf("RecordSave: %v", err)
	}
	if uuid != "id-1" {
		t.Errorf("generated uuid = %q, want id-1", uuid)
	}

	uuid, err = svc.RecordSave("", path.ID, nil)
	if err != nil {
		t.Fatalf("RecordSave: %v", err)
	}
	if uuid != "id-2" {
		t.Errorf("generated uuid = %q, want id-2", uuid)
	}
}

func TestRecordSaveHonorsSuppliedUUID(t *testing.T) {
	svc, _ := newTestService(t)

	game, err := svc.AddGame(&model.GameMetadataCreate{DefaultName: "Foo"})
	if err != nil {
		t.Fatalf("AddGame: %v", err)
	}
	path, err := svc.AddSavePath(game.ID, &model.SavePathCreate{Path: "/save/foo", OS: model.Linux})
	if err != nil {
		t.Fatalf("AddSavePath: %v", err)
	}

	uuid, err := svc.RecordSave("my-save", path.ID, nil)
	if err != nil {
		t.Fatalf("RecordSave: %v", err)
	}
	if uuid != "my-save" {
		t.Errorf("uuid = %q, want my-save", uuid)
	}

	// The snapshot time comes from the injected clock.
	refs, err := svc.SaveHistory(path.ID)
	if err != nil {
		t.Fatalf("SaveHistory: %v", err)
	}
	if len(refs) != 1 {
		t.Fatalf("got %d refs, want 1", len(refs))
	}
	want := time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC)
	if !refs[0].Time.Equal(want) {
		t.Errorf("save time = %v, want %v", refs[0].Time, want)
	}
}

func TestSaveHistoryEmpty(t *testing.T) {
	svc, _ := newTestService(t)

	game, err := svc.AddGame(&model.GameMetadataCreate{DefaultName: "Foo"})
	if err != nil {
		t.Fatalf("AddGame: %v", err)
	}
	path, err := svc.AddSavePath(game.ID, &model.SavePathCreate{Path: "/save/foo", OS: model.Linux})
	if err != nil {
		t.Fatalf("AddSavePath: %v", err)
	}

	refs, err := svc.SaveHistory(path.ID)
	if err != nil {
		t.Fatalf("SaveHistory: %v", err)
	}
	if refs != nil {
		t.Errorf("refs = %v, want nil for path with no saves", refs)
	}
}
