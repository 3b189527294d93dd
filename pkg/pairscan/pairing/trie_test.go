package pairing

import (
	"testing"
)

// TestTrieExactMatch verifies an exact base name wins over any prefix
// candidate.
func TestTrieExactMatch(t *testing.T) {
	tr := newTrie()
	tr.insert("model_v1", 0)
	tr.insert("model_v2", 1)
	tr.insert("statue", 2)

	pos, ok := tr.takeBest("model_v1")
	if !ok {
		t.Fatal("expected a match")
	}
	if pos != 0 {
		t.Errorf("takeBest(model_v1) = %d, want 0 (exact match)", pos)
	}
}

// TestTrieLongestPrefix verifies fallback to the deepest shared prefix.
func TestTrieLongestPrefix(t *testing.T) {
	tr := newTrie()
	tr.insert("mba", 0)
	tr.insert("za", 1)

	pos, ok := tr.takeBest("mbz")
	if !ok {
		t.Fatal("expected a match")
	}
	if pos != 0 {
		t.Errorf("takeBest(mbz) = %d, want 0 (shares mb)", pos)
	}
}

// TestTrieLexicographicTieBreak verifies the sorted-first candidate
// wins among equal-length prefixes.
func TestTrieLexicographicTieBreak(t *testing.T) {
	tr := newTrie()
	tr.insert("modelbeta", 0)
	tr.insert("modelalpha", 1)

	pos, ok := tr.takeBest("modelx")
	if !ok {
		t.Fatal("expected a match")
	}
	if pos != 1 {
		t.Errorf("takeBest(modelx) = %d, want 1 (modelalpha sorts first)", pos)
	}
}

// TestTrieShorterCandidate verifies a candidate that is a proper
// prefix of the archive name is found.
func TestTrieShorterCandidate(t *testing.T) {
	tr := newTrie()
	tr.insert("model", 0)

	pos, ok := tr.takeBest("model_v1")
	if !ok {
		t.Fatal("expected a match")
	}
	if pos != 0 {
		t.Errorf("takeBest(model_v1) = %d, want 0", pos)
	}
}

// TestTrieNoCommonPrefix verifies lookups sharing no leading character
// find nothing.
func TestTrieNoCommonPrefix(t *testing.T) {
	tr := newTrie()
	tr.insert("alpha", 0)

	if _, ok := tr.takeBest("zulu"); ok {
		t.Error("expected no match without a shared prefix")
	}
}

// TestTrieConsumption verifies candidates are taken oldest first and
// exhausted queues fall through to the next best candidate.
func TestTrieConsumption(t *testing.T) {
	tr := newTrie()
	tr.insert("base", 0)
	tr.insert("base", 1)
	tr.insert("based", 2)

	if pos, ok := tr.takeBest("base"); !ok || pos != 0 {
		t.Fatalf("first take = %d, %v; want 0, true", pos, ok)
	}
	if pos, ok := tr.takeBest("base"); !ok || pos != 1 {
		t.Fatalf("second take = %d, %v; want 1, true", pos, ok)
	}

	// Exact queue exhausted; the extension is the remaining candidate.
	if pos, ok := tr.takeBest("base"); !ok || pos != 2 {
		t.Fatalf("third take = %d, %v; want 2, true", pos, ok)
	}

	if _, ok := tr.takeBest("base"); ok {
		t.Error("expected empty trie to yield no match")
	}
}

// TestTrieEmpty verifies lookups against an empty trie.
func TestTrieEmpty(t *testing.T) {
	tr := newTrie()
	if _, ok := tr.takeBest("anything"); ok {
		t.Error("expected no match from an empty trie")
	}
}
