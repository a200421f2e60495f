package meta

import "testing"

func TestDuplicateKey(t *testing.T) {
	tests := []struct {
		a, b Score
		same bool
	}{
		// Editions of the same piece share a key.
		{Score{Composer: "Bach", Title: "Air"}, Score{Composer: "Bach", Title: "Air (arr. Smith)"}, true},
		{Score{Composer: "Bach", Title: "Air"}, Score{Composer: "bach", Title: "AIR [Urtext]"}, true},
		// Name order does not matter.
		{Score{Composer: "Bach, Johann Sebastian", Title: "Air"}, Score{Composer: "Johann Sebastian Bach", Title: "Air"}, true},
		// Different pieces stay apart.
		{Score{Composer: "Bach", Title: "Air"}, Score{Composer: "Bach", Title: "Badinerie"}, false},
		{Score{Composer: "Bach", Title: "Air"}, Score{Composer: "Handel", Title: "Air"}, false},
		// Unparseable files only match on identical filenames.
		{Score{Filename: "IMG_1234.pdf"}, Score{Filename: "IMG_1234.pdf"}, true},
		{Score{Filename: "IMG_1234.pdf"}, Score{Filename: "IMG_9999.pdf"}, false},
	}

	for _, tt := range tests {
		ka, kb := DuplicateKey(tt.a), DuplicateKey(tt.b)
		if (ka == kb) != tt.same {
			t.Errorf("DuplicateKey(%v) = %q, DuplicateKey(%v) = %q; same = %v, want %v",
				tt.a, ka, tt.b, kb, ka == kb, tt.same)
		}
	}
}

func TestFindDuplicates(t *testing.T) {
	scores := []Score{
		{Path: "/lib/a.pdf", Composer: "Bach", Title: "Air"},
		{Path: "/lib/b.pdf", Composer: "Handel", Title: "Sarabande"},
		{Path: "/lib/c.pdf", Composer: "Bach", Title: "Air (arr. Smith)"},
		{Path: "/lib/d.pdf", Composer: "Bach", Title: "Air [Urtext]"},
		{Path: "/lib/e.pdf", Composer: "Mozart", Title: "Rondo"},
	}

	groups := FindDuplicates(scores)

	if len(groups) != 1 {
		t.Fatalf("FindDuplicates returned %d groups; want 1", len(groups))
	}
	if len(groups[0].Scores) != 3 {
		t.Fatalf("duplicate group has %d members; want 3", len(groups[0].Scores))
	}

	// Members keep their input order.
	want := []string{"/lib/a.pdf", "/lib/c.pdf", "/lib/d.pdf"}
	for i, s := range groups[0].Scores {
		if s.Path != want[i] {
			t.Errorf("group member %d = %q; want %q", i, s.Path, want[i])
		}
	}
}

func TestFindDuplicatesEmpty(t *testing.T) {
	if groups := FindDuplicates(nil); len(groups) != 0 {
		t.Errorf("FindDuplicates(nil) = %v; want none", groups)
	}

	singles := []Score{
		{Composer: "Bach", Title: "Air"},
		{Composer: "Bach", Title: "Badinerie"},
	}
	if groups := FindDuplicates(singles); len(groups) != 0 {
		t.Errorf("FindDuplicates on singletons = %v; want none", groups)
	}
}
