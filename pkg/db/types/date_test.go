package types

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("1990-05-01")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if d.String() != "1990-05-01" {
		t.Fatalf("unexpected %s", d)
	}

	d, err = ParseDate("1990-05-01T00:00:00Z")
	if err != nil || d.String() != "1990-05-01" {
		t.Fatalf("expected rfc3339 truncation, got %s err=%v", d, err)
	}

	if _, err := ParseDate("N/A"); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestDateScan(t *testing.T) {
	var d Date
	if err := d.Scan(time.Date(2001, 2, 3, 15, 4, 5, 0, time.UTC)); err != nil || d.String() != "2001-02-03" {
		t.Fatalf("time scan: %s err=%v", d, err)
	}
	if err := d.Scan([]byte("2001-02-04 00:00:00")); err != nil || d.String() != "2001-02-04" {
		t.Fatalf("bytes scan: %s err=%v", d, err)
	}
	if err := d.Scan(nil); err != nil || !d.IsZero() {
		t.Fatalf("nil scan: %s err=%v", d, err)
	}
	if err := d.Scan(42); err == nil {
		t.Fatal("expected unsupported type error")
	}
}

func TestDateJSON(t *testing.T) {
	var payload struct {
		Birthday *Date `json:"birthday"`
	}
	if err := json.Unmarshal([]byte(`{"birthday":"1988-12-31"}`), &payload); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	out, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `{"birthday":"1988-12-31"}` {
		t.Fatalf("unexpected %s", out)
	}

	value, err := Date{}.Value()
	if err != nil || value != nil {
		t.Fatalf("zero date should store NULL, got %v", value)
	}
}
