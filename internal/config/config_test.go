package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestManager_ReadWrite_RoundTrip(t *testing.T) {
	original := &Config{
		HostID:  "test-host-abc",
		BaseDir: "/home/user/.local/share/gsc",
		LogDir:  "/home/user/.local/share/gsc/log",
		Vaults: []VaultConfig{
			{Type: "filesystem", Name: "local", FSVaultRoot: "/backup/vault"},
			{Type: "s3", Name: "offsite", S3Bucket: "my-saves", S3Prefix: "gsc", S3Region: "us-east-1"},
		},
		Encryption: EncryptionConfig{
			PublicKeyPath:  "/home/user/.local/share/gsc/keys/gsc.pub",
			PrivateKeyPath: "/home/user/.local/share/gsc/keys/gsc.key",
		},
		Database: DatabaseConfig{Type: "sqlite", DataDir: "/home/user/.local/share/gsc/db"},
	}

	var buf bytes.Buffer
	m := &Manager{}

	if err := m.Write(&buf, original); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	got, err := m.Read(&buf)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if got.HostID != original.HostID {
		t.Errorf("HostID = %q, want %q", got.HostID, original.HostID)
	}
	if got.BaseDir != original.BaseDir {
		t.Errorf("BaseDir = %q, want %q", got.BaseDir, original.BaseDir)
	}
	if len(got.Vaults) != 2 {
		t.Fatalf("len(Vaults) = %d, want 2", len(got.Vaults))
	}
	if got.Vaults[0].FSVaultRoot != "/backup/vault" {
		t.Errorf("Vault.FSVaultRoot = %q, want %q", got.Vaults[0].FSVaultRoot, "/backup/vault")
	}
	if got.Vaults[1].S3Bucket != "my-saves" {
		t.Errorf("Vault.S3Bucket = %q, want %q", got.Vaults[1].S3Bucket, "my-saves")
	}
	if got.Encryption.PublicKeyPath != original.Encryption.PublicKeyPath {
		t.Errorf("Encryption.PublicKeyPath = %q, want %q", got.Encryption.PublicKeyPath, original.Encryption.PublicKeyPath)
	}
	if got.Database.Type != "sqlite" {
		t.Errorf("Database.Type = %q, want %q", got.Database.Type, "sqlite")
	}
	if got.Database.DataDir != original.Database.DataDir {
		t.Errorf("Database.DataDir = %q, want %q", got.Database.DataDir, original.Database.DataDir)
	}
}

func TestNewConfig_Defaults(t *testing.T) {
	cfg := NewConfig("host-1", "/data/gsc")

	if cfg.LogDir != filepath.Join("/data/gsc", "log") {
		t.Errorf("LogDir = %q, want %q", cfg.LogDir, "/data/gsc/log")
	}
	if cfg.Encryption.PublicKeyPath != filepath.Join("/data/gsc", "keys", "gsc.pub") {
		t.Errorf("PublicKeyPath = %q", cfg.Encryption.PublicKeyPath)
	}
	if cfg.Database.Type != "sqlite" {
		t.Errorf("Database.Type = %q, want sqlite", cfg.Database.Type)
	}
}

func TestInit(t *testing.T) {
	t.Run("creates config file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "sub", "gsc.toml")

		cfg := NewConfig("host-1", dir)
		if err := Init(path, cfg); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		got, err := ReadFromFile(path)
		if err != nil {
			t.Fatalf("ReadFromFile() error = %v", err)
		}
		if got.HostID != "host-1" {
			t.Errorf("HostID = %q, want host-1", got.HostID)
		}
	})

	t.Run("fails when config already exists", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "gsc.toml")
		if err := os.WriteFile(path, []byte("host_id = \"x\"\n"), 0644); err != nil {
			t.Fatal(err)
		}

		if err := Init(path, NewConfig("host-1", dir)); err == nil {
			t.Error("Init() expected error for existing config, got nil")
		}
	})
}
