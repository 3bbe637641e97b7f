package parser

import (
	"strings"
	"testing"
)

const glFixture = `,Date,Type,Name,Memo,Split,Amount
Chase Checking,,,,,,
,3/1/2024,Check,Landlord,March rent,Rent,"-1,200.00"
,3/2/2024,Debit,Kroger,,Groceries,(54.10)
Total Chase Checking,,,,,,"-1,254.10"
,,,,,,
Savings,,,,,,
,3/3/2024,Transfer,,from checking,Chase Checking,500.00
Total Savings,,,,,,500.00
,bad-date,Debit,Broken,,Misc,1.00
`

func TestParseGeneralLedgerSections(t *testing.T) {
	result, err := Parse("ledger.csv", []byte(glFixture), "")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if len(result.Records) != 3 {
		t.Fatalf("expected 3 records, got %d: %+v", len(result.Records), result.Records)
	}

	first := result.Records[0]
	if first.RawAccountLabel != "Chase Checking" {
		t.Fatalf("unexpected account label %q", first.RawAccountLabel)
	}
	if first.RawSplitLabel != "Rent" {
		t.Fatalf("unexpected split label %q", first.RawSplitLabel)
	}
	if first.Description != "Landlord" || first.Memo != "March rent" {
		t.Fatalf("unexpected description/memo %q/%q", first.Description, first.Memo)
	}
	if first.RawTypeHint != "Check" {
		t.Fatalf("unexpected type hint %q", first.RawTypeHint)
	}
	if first.Amount.String() != "-1200" {
		t.Fatalf("unexpected amount %s", first.Amount)
	}
	if first.Date.String() != "2024-03-01" {
		t.Fatalf("unexpected date %s", first.Date)
	}

	second := result.Records[1]
	if second.Amount.String() != "-54.1" {
		t.Fatalf("parenthesized amount not negated: %s", second.Amount)
	}
	if second.RawAccountLabel != "Chase Checking" {
		t.Fatalf("section label not inherited: %q", second.RawAccountLabel)
	}

	third := result.Records[2]
	if third.RawAccountLabel != "Savings" {
		t.Fatalf("second section not tracked: %q", third.RawAccountLabel)
	}
	if third.RawSplitLabel != "Chase Checking" {
		t.Fatalf("unexpected split label %q", third.RawSplitLabel)
	}

	if len(result.RowErrors) != 1 || result.Skipped != 1 {
		t.Fatalf("expected 1 row error, got %+v skipped=%d", result.RowErrors, result.Skipped)
	}
	if !strings.Contains(result.RowErrors[0].Reason, "date") {
		t.Fatalf("unexpected row error reason %q", result.RowErrors[0].Reason)
	}
}

func TestParseGeneralLedgerNoSectionIsRowError(t *testing.T) {
	content := `,Date,Type,Name,Memo,Split,Amount
,3/1/2024,Check,Landlord,,Rent,-1200.00
Chase Checking,,,,,,
,3/2/2024,Debit,Kroger,,Groceries,-54.10
`
	result, err := Parse("ledger.csv", []byte(content), "")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(result.Records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(result.Records))
	}
	if result.RowErrors[0].Reason != "no account label" {
		t.Fatalf("unexpected reason %q", result.RowErrors[0].Reason)
	}
}

func TestGeneralLedgerDateRange(t *testing.T) {
	result, err := Parse("ledger.csv", []byte(glFixture), "")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	rng, ok := result.DateRange()
	if !ok {
		t.Fatal("expected a date range")
	}
	if rng.From.String() != "2024-03-01" || rng.To.String() != "2024-03-03" {
		t.Fatalf("unexpected range %s..%s", rng.From, rng.To)
	}
}
