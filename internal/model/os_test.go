package model

import "testing"

func TestOS_CodeRoundTrip(t *testing.T) {
	for _, os := range []OS{Windows, Linux, MacOS} {
		code := os.Code()
		if code == "" {
			t.Fatalf("Code() for %v is empty", os)
		}

		decoded, err := OSFromCode(code)
		if err != nil {
			t.Fatalf("OSFromCode(%q) error = %v", code, err)
		}
		if decoded != os {
			t.Errorf("OSFromCode(%q) = %v, want %v", code, decoded, os)
		}
	}
}

func TestOSFromCode_UnknownCode(t *testing.T) {
	for _, code := range []string{"", "freebsd", "Windows", "LINUX"} {
		if _, err := OSFromCode(code); err == nil {
			t.Errorf("OSFromCode(%q) expected error, got nil", code)
		}
	}
}

func TestOS_Valid(t *testing.T) {
	if !Linux.Valid() {
		t.Error("Linux.Valid() = false, want true")
	}
	if OS(0).Valid() {
		t.Error("OS(0).Valid() = true, want false")
	}
	if OS(99).Valid() {
		t.Error("OS(99).Valid() = true, want false")
	}
}
