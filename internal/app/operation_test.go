package app

import "testing"

func TestOperationPersisted(t *testing.T) {
	op := NewOperation("AddGame", "name=Foo")
	if op.Persisted() {
		t.Error("fresh operation reported as persisted")
	}
	if op.Status != "success" {
		t.Errorf("initial status = %q, want success", op.Status)
	}

	op.ID = 7
	if !op.Persisted() {
		t.Error("operation with id not reported as persisted")
	}
}
