package vault

import (
	"bytes"
	"strings"
	"testing"
)

func TestMemoryVault_PutGetSnapshot(t *testing.T) {
	v := NewMemoryVault("test")

	data := "catalog snapshot bytes"
	if err := v.PutSnapshot("host-1", strings.NewReader(data), int64(len(data)), 3); err != nil {
		t.Fatalf("PutSnapshot() error = %v", err)
	}

	var buf bytes.Buffer
	if err := v.GetSnapshot("host-1", &buf); err != nil {
		t.Fatalf("GetSnapshot() error = %v", err)
	}
	if buf.String() != data {
		t.Errorf("GetSnapshot() = %q, want %q", buf.String(), data)
	}

	version, err := v.GetSnapshotVersion("host-1")
	if err != nil {
		t.Fatalf("GetSnapshotVersion() error = %v", err)
	}
	if version != 3 {
		t.Errorf("version = %d, want 3", version)
	}
}

func TestMemoryVault_SizeMismatch(t *testing.T) {
	v := NewMemoryVault("test")

	err := v.PutSnapshot("host-1", strings.NewReader("abc"), 10, 1)
	if err == nil {
		t.Error("PutSnapshot() expected size mismatch error, got nil")
	}
}

func TestMemoryVault_GetSnapshot_NotFound(t *testing.T) {
	v := NewMemoryVault("test")

	var buf bytes.Buffer
	if err := v.GetSnapshot("missing", &buf); err == nil {
		t.Error("GetSnapshot() expected error for missing host, got nil")
	}
}

func TestMemoryVault_GetSnapshotVersion_Unset(t *testing.T) {
	v := NewMemoryVault("test")

	version, err := v.GetSnapshotVersion("missing")
	if err != nil {
		t.Fatalf("GetSnapshotVersion() error = %v", err)
	}
	if version != 0 {
		t.Errorf("version = %d, want 0", version)
	}
}

func TestMemoryVault_PutSnapshot_Replaces(t *testing.T) {
	v := NewMemoryVault("test")

	if err := v.PutSnapshot("host-1", strings.NewReader("old"), 3, 1); err != nil {
		t.Fatalf("PutSnapshot() error = %v", err)
	}
	if err := v.PutSnapshot("host-1", strings.NewReader("newer"), 5, 2); err != nil {
		t.Fatalf("PutSnapshot() error = %v", err)
	}

	var buf bytes.Buffer
	if err := v.GetSnapshot("host-1", &buf); err != nil {
		t.Fatalf("GetSnapshot() error = %v", err)
	}
	if buf.String() != "newer" {
		t.Errorf("GetSnapshot() = %q, want %q", buf.String(), "newer")
	}

	version, _ := v.GetSnapshotVersion("host-1")
	if version != 2 {
		t.Errorf("version = %d, want 2", version)
	}
}
