package dedup

import (
	"testing"

	"github.com/google/uuid"
)

func TestDetectorExactHit(t *testing.T) {
	storedID := uuid.New()
	det := NewDetector([]Stored{
		StoredFrom(storedID, march9, d("-23.49"), "Amazon", "Chase Checking"),
	})

	out := det.Check(KeysFor(march9, d("-23.49"), "AMAZON.COM", "Chase Checking"))
	if !out.Duplicate {
		t.Fatal("expected an exact duplicate")
	}
	if out.DuplicateOf != storedID {
		t.Fatalf("unexpected duplicate reference %s", out.DuplicateOf)
	}
	if len(out.PotentialOf) != 0 {
		t.Fatalf("exact duplicates must not also flag potentials, got %v", out.PotentialOf)
	}
}

func TestDetectorPartialHit(t *testing.T) {
	first, second := uuid.New(), uuid.New()
	det := NewDetector([]Stored{
		StoredFrom(first, march9, d("-23.49"), "Amazon order 111", "Chase Checking"),
		StoredFrom(second, march9, d("-23.49"), "Amazon order 222", "Chase Checking"),
	})

	out := det.Check(KeysFor(march9, d("23.49"), "Something else entirely", "Chase Checking"))
	if out.Duplicate {
		t.Fatal("partial hit must not be treated as an exact duplicate")
	}
	if len(out.PotentialOf) != 2 {
		t.Fatalf("expected both stored rows flagged, got %v", out.PotentialOf)
	}
	if out.PotentialOf[0] != first || out.PotentialOf[1] != second {
		t.Fatalf("unexpected flag order %v", out.PotentialOf)
	}
}

func TestDetectorClean(t *testing.T) {
	det := NewDetector([]Stored{
		StoredFrom(uuid.New(), march9, d("-23.49"), "Amazon", "Chase Checking"),
	})

	out := det.Check(KeysFor(march9, d("-23.49"), "Amazon", "Different Card"))
	if out.Duplicate || len(out.PotentialOf) != 0 {
		t.Fatalf("expected a clean record, got %+v", out)
	}
}

func TestDetectorEmpty(t *testing.T) {
	det := NewDetector(nil)
	out := det.Check(KeysFor(march9, d("1.00"), "x", "y"))
	if out.Duplicate || len(out.PotentialOf) != 0 {
		t.Fatalf("expected a clean record, got %+v", out)
	}
}
