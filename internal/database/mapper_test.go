package database

import (
	"testing"
	"time"

	"gsc-go/internal/model"
)

func TestNullStringMapping(t *testing.T) {
	if got := toNullString(nil); got.Valid {
		t.Errorf("toNullString(nil) = %+v, want invalid", got)
	}

	v := "12345"
	ns := toNullString(&v)
	if !ns.Valid || ns.String != "12345" {
		t.Errorf("toNullString(&v) = %+v, want valid 12345", ns)
	}

	back := fromNullString(ns)
	if back == nil || *back != "12345" {
		t.Errorf("fromNullString round trip = %v, want 12345", back)
	}
	if fromNullString(toNullString(nil)) != nil {
		t.Error("nil did not round trip through NullString")
	}
}

func TestEncodeOS(t *testing.T) {
	code, err := encodeOS(model.Windows)
	if err != nil {
		t.Fatalf("encodeOS(Windows): %v", err)
	}
	if code != "windows" {
		t.Errorf("code = %q, want windows", code)
	}

	if _, err := encodeOS(model.OS(0)); err == nil {
		t.Error("encodeOS(0) succeeded, want error")
	}
	if _, err := encodeOS(model.OS(42)); err == nil {
		t.Error("encodeOS(42) succeeded, want error")
	}
}

func TestUnixSecondsRoundTrip(t *testing.T) {
	at := time.Date(2026, 3, 15, 10, 30, 45, 0, time.UTC)

	sec := toUnixSeconds(at)
	if got := fromUnixSeconds(sec); !got.Equal(at) {
		t.Errorf("round trip = %v, want %v", got, at)
	}

	// Non-UTC input normalizes to the same instant.
	loc := time.FixedZone("UTC+2", 2*60*60)
	local := at.In(loc)
	if got := toUnixSeconds(local); got != sec {
		t.Errorf("local time encoded to %d, want %d", got, sec)
	}
}
