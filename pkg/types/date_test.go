package types

import (
	"encoding/json"
	"testing"
	"time"
)

func TestDateParseAndFormat(t *testing.T) {
	d, err := ParseISODate("2024-03-09")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if d.Year != 2024 || d.Month != time.March || d.Day != 9 {
		t.Fatalf("unexpected components %+v", d)
	}
	if d.String() != "2024-03-09" {
		t.Fatalf("unexpected string %s", d)
	}

	if _, err := ParseISODate("03/09/2024"); err == nil {
		t.Fatal("expected error for non-ISO input")
	}
}

func TestDateTimezoneStability(t *testing.T) {
	// The same instant names different days in different zones; a Date
	// built from components must not shift either way.
	d := NewDate(2024, time.January, 1)
	if got := DateOf(d.Time()); !got.Equal(d) {
		t.Fatalf("round trip through Time changed the day: %v", got)
	}

	tokyo, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	late := time.Date(2024, time.January, 1, 23, 30, 0, 0, tokyo)
	if got := DateOf(late); got.String() != "2024-01-01" {
		t.Fatalf("expected local calendar day, got %s", got)
	}
}

func TestDateJSONRoundTrip(t *testing.T) {
	type payload struct {
		Day Date `json:"day"`
	}

	var got payload
	if err := json.Unmarshal([]byte(`{"day": "2023-12-31"}`), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Day.String() != "2023-12-31" {
		t.Fatalf("unexpected day %s", got.Day)
	}

	raw, err := json.Marshal(got)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(raw) != `{"day":"2023-12-31"}` {
		t.Fatalf("unexpected json %s", raw)
	}
}

func TestDateScan(t *testing.T) {
	var d Date
	if err := d.Scan(time.Date(2024, time.June, 5, 0, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("scan time: %v", err)
	}
	if d.String() != "2024-06-05" {
		t.Fatalf("unexpected date %s", d)
	}

	// sqlite hands DATE columns back as text with a time suffix
	if err := d.Scan("2024-06-06T00:00:00Z"); err != nil {
		t.Fatalf("scan string: %v", err)
	}
	if d.String() != "2024-06-06" {
		t.Fatalf("unexpected date %s", d)
	}

	if err := d.Scan(42); err == nil {
		t.Fatal("expected error scanning int")
	}
}

func TestDateOrdering(t *testing.T) {
	a := NewDate(2024, time.February, 28)
	b := NewDate(2024, time.March, 1)
	if !a.Before(b) || !b.After(a) {
		t.Fatal("expected a < b")
	}
	if a.After(b) || b.Before(a) {
		t.Fatal("ordering inverted")
	}

	r := DateRange{From: a, To: b}
	if !r.Contains(NewDate(2024, time.February, 29)) {
		t.Fatal("expected leap day inside range")
	}
	if r.Contains(NewDate(2024, time.March, 2)) {
		t.Fatal("expected day after range to be excluded")
	}
}
