package domain_test

import (
	"testing"

	"explorer/internal/domain"
)

func TestSchema_Lookup(t *testing.T) {
	s := domain.Schema{
		{Display: "Name", Name: "name", Type: domain.FieldTypeText},
		{Display: "Bikes", Name: "bikes", Type: domain.FieldTypeInteger},
	}

	f, ok := s.Lookup("bikes")
	if !ok || f.Display != "Bikes" || f.Type != domain.FieldTypeInteger {
		t.Errorf("unexpected lookup result: %+v, %v", f, ok)
	}
	if _, ok := s.Lookup("Bikes"); ok {
		t.Error("expected lookup by display to fail")
	}
	if _, ok := domain.Schema(nil).Lookup("name"); ok {
		t.Error("expected empty schema lookup to fail")
	}
}
