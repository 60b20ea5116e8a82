package dataset_test

import (
	"errors"
	"strings"
	"testing"

	"explorer/internal/dataset"
	"explorer/internal/domain"
)

// ─────────────────────────────────────────────────────────────
// DecodeRows
// ─────────────────────────────────────────────────────────────

func TestDecodeRows_KeepsKeyOrderAndFlattens(t *testing.T) {
	data := []byte(`[
		{"zeta": 1, "alpha": "x", "nested": {"b": 2, "a": [1, 2]}, "flag": true, "none": null},
		{"alpha": "y"}
	]`)

	rows, err := dataset.DecodeRows("test", data, "")
	if err != nil {
		t.Fatalf("DecodeRows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}

	if got := strings.Join(rows[0].Keys(), ","); got != "zeta,alpha,nested,flag,none" {
		t.Errorf("unexpected key order %q", got)
	}
	if v, _ := rows[0].Lookup("zeta"); v != float64(1) {
		t.Errorf("expected float64 1, got %#v", v)
	}
	if v, _ := rows[0].Lookup("nested"); v != `{"b":2,"a":[1,2]}` {
		t.Errorf("expected compact nested JSON, got %#v", v)
	}
	if v, ok := rows[0].Lookup("none"); !ok || v != nil {
		t.Errorf("expected present nil, got %#v ok=%v", v, ok)
	}
}

func TestDecodeRows_DataPath(t *testing.T) {
	data := []byte(`{"data": {"items": [{"id": 1}]}}`)
	rows, err := dataset.DecodeRows("test", data, "data.items")
	if err != nil {
		t.Fatalf("DecodeRows: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}

	_, err = dataset.DecodeRows("test", data, "data.missing")
	assertReason(t, err, dataset.ReasonBadPath)
}

func TestDecodeRows_Rejects(t *testing.T) {
	_, err := dataset.DecodeRows("test", []byte(`{"id": 1}`), "")
	assertReason(t, err, dataset.ReasonNotArray)

	_, err = dataset.DecodeRows("test", []byte(`null`), "")
	assertReason(t, err, dataset.ReasonNotArray)

	_, err = dataset.DecodeRows("test", []byte(`not json`), "")
	assertReason(t, err, dataset.ReasonNotArray)

	_, err = dataset.DecodeRows("test", []byte(`[{"id": 1}, 2]`), "")
	assertReason(t, err, dataset.ReasonNotObjects)

	_, err = dataset.DecodeRows("test", []byte(`[null]`), "")
	assertReason(t, err, dataset.ReasonNotObjects)
}

func TestDecodeRows_EmptyArray(t *testing.T) {
	rows, err := dataset.DecodeRows("test", []byte(`[]`), "")
	if err != nil {
		t.Fatalf("DecodeRows: %v", err)
	}
	if rows == nil || len(rows) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", rows)
	}
}

func assertReason(t *testing.T, err error, reason string) {
	t.Helper()
	var fe *domain.DatasetFetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected DatasetFetchError, got %v", err)
	}
	if fe.Reason != reason {
		t.Errorf("expected reason %q, got %q", reason, fe.Reason)
	}
}
