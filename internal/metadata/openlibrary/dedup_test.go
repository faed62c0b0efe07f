package openlibrary

import (
	"fmt"
	"testing"
)

func TestSignature(t *testing.T) {
	tests := []struct {
		name string
		a    SearchResult
		b    SearchResult
		same bool
	}{
		{
			name: "identical",
			a:    SearchResult{Title: "Dune", Authors: []string{"Frank Herbert"}},
			b:    SearchResult{Title: "Dune", Authors: []string{"Frank Herbert"}},
			same: true,
		},
		{
			name: "case and whitespace normalized",
			a:    SearchResult{Title: "Dune", Authors: []string{"Frank Herbert"}},
			b:    SearchResult{Title: "  DUNE ", Authors: []string{"frank herbert "}},
			same: true,
		},
		{
			name: "missing author treated as Unknown",
			a:    SearchResult{Title: "Beowulf"},
			b:    SearchResult{Title: "beowulf", Authors: []string{"unknown"}},
			same: true,
		},
		{
			name: "different author",
			a:    SearchResult{Title: "Dune", Authors: []string{"Frank Herbert"}},
			b:    SearchResult{Title: "Dune", Authors: []string{"Brian Herbert"}},
			same: false,
		},
		{
			name: "only primary author counts",
			a:    SearchResult{Title: "Dune", Authors: []string{"Frank Herbert", "Someone Else"}},
			b:    SearchResult{Title: "Dune", Authors: []string{"Frank Herbert"}},
			same: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sigA := Signature(tt.a.Title, tt.a.Authors)
			sigB := Signature(tt.b.Title, tt.b.Authors)
			if (sigA == sigB) != tt.same {
				t.Errorf("Signature equality = %v, want %v", sigA == sigB, tt.same)
			}
		})
	}
}

func TestDeduplicate(t *testing.T) {
	results := []SearchResult{
		{WorkID: "OL1W", Title: "Dune", Authors: []string{"Frank Herbert"}},
		{WorkID: "OL2W", Title: "DUNE ", Authors: []string{"Frank Herbert"}},
		{WorkID: "OL3W", Title: "Dune Messiah", Authors: []string{"Frank Herbert"}},
	}

	deduped := Deduplicate(results)
	if len(deduped) != 2 {
		t.Fatalf("expected 2 results, got %d", len(deduped))
	}
	// First occurrence wins.
	if deduped[0].WorkID != "OL1W" {
		t.Errorf("expected first-seen work OL1W kept, got %q", deduped[0].WorkID)
	}
	if deduped[1].WorkID != "OL3W" {
		t.Errorf("expected OL3W kept, got %q", deduped[1].WorkID)
	}
}

func TestDeduplicate_Truncates(t *testing.T) {
	results := make([]SearchResult, 0, MaxResults+10)
	for i := 0; i < MaxResults+10; i++ {
		results = append(results, SearchResult{
			WorkID: fmt.Sprintf("OL%dW", i),
			Title:  fmt.Sprintf("Unique Title %d", i),
		})
	}

	deduped := Deduplicate(results)
	if len(deduped) != MaxResults {
		t.Errorf("expected %d results, got %d", MaxResults, len(deduped))
	}
}

func TestDeduplicate_RunsOverFullSetBeforeTruncating(t *testing.T) {
	// 25 raw entries: ten titles appear twice up front, five more
	// unique titles sit past the MaxResults boundary. Truncating
	// before dedup would drop the tail and under-fill the list.
	var results []SearchResult
	for i := 0; i < 10; i++ {
		title := fmt.Sprintf("Duplicated Title %d", i)
		results = append(results,
			SearchResult{WorkID: fmt.Sprintf("OL%dW", 2*i), Title: title},
			SearchResult{WorkID: fmt.Sprintf("OL%dW", 2*i+1), Title: title},
		)
	}
	for i := 0; i < 5; i++ {
		results = append(results, SearchResult{
			WorkID: fmt.Sprintf("OL9%dW", i),
			Title:  fmt.Sprintf("Tail Title %d", i),
		})
	}

	deduped := Deduplicate(results)
	if len(deduped) != 15 {
		t.Fatalf("expected all 15 unique works, got %d", len(deduped))
	}
	if last := deduped[14].WorkID; last != "OL94W" {
		t.Errorf("expected tail work OL94W kept, got %q", last)
	}
}

func TestDeduplicate_Empty(t *testing.T) {
	if got := Deduplicate(nil); len(got) != 0 {
		t.Errorf("expected empty result, got %d", len(got))
	}
}
