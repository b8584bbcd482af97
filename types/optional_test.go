package types

import (
	"encoding/json"
	"testing"
)

func TestStudentUpdateDistinguishesOmittedFromEmpty(t *testing.T) {
	var update StudentUpdate
	if err := json.Unmarshal([]byte(`{"address":"new addr","description":"","grade":null}`), &update); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if got, ok := update.Address.Get(); !ok || got != "new addr" {
		t.Fatalf("address = %q, %v", got, ok)
	}
	if !update.Description.Set || update.Description.Value != "" {
		t.Fatalf("expected description to be explicitly empty, got %+v", update.Description)
	}
	if update.Grade.Set {
		t.Fatalf("expected null grade to be treated as omitted")
	}
	if update.Name.Set || update.Email.Set || update.Age.Set || update.Role.Set {
		t.Fatalf("unexpected fields set: %+v", update)
	}
	if update.Empty() {
		t.Fatalf("expected update to be non-empty")
	}
}

func TestStudentUpdateEmpty(t *testing.T) {
	var update StudentUpdate
	if err := json.Unmarshal([]byte(`{}`), &update); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !update.Empty() {
		t.Fatalf("expected empty update")
	}
}

func TestOptionalPtr(t *testing.T) {
	if p := (Optional[int]{}).Ptr(); p != nil {
		t.Fatalf("expected nil pointer for unset value")
	}
	if p := Some(7).Ptr(); p == nil || *p != 7 {
		t.Fatalf("unexpected pointer %v", p)
	}
}

func TestOptionalRejectsWrongType(t *testing.T) {
	var update StudentUpdate
	if err := json.Unmarshal([]byte(`{"age":"ten"}`), &update); err == nil {
		t.Fatalf("expected type error")
	}
}
