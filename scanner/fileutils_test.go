package scanner_test

import (
	"os"
	"path/filepath"
	"testing"

	"texturefinder/scanner"
	"texturefinder/testsupport"
)

func TestListCandidatesSkipsHiddenDirsAndReference(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteFile(t, dir, "b.png", []byte("b"))
	testsupport.WriteFile(t, dir, "a.jpg", []byte("a"))
	testsupport.WriteFile(t, dir, ".hidden.png", []byte("h"))
	testsupport.WriteFile(t, dir, "notes.txt", []byte("n"))
	reference := testsupport.WriteFile(t, dir, "ref.png", []byte("r"))
	if err := os.Mkdir(filepath.Join(dir, "nested"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	candidates, err := scanner.ListCandidates(dir, reference)
	if err != nil {
		t.Fatalf("ListCandidates: %v", err)
	}

	want := []string{"a.jpg", "b.png", "notes.txt"}
	if len(candidates) != len(want) {
		t.Fatalf("unexpected candidates: %+v", candidates)
	}
	for i, c := range candidates {
		if c.Name != want[i] {
			t.Fatalf("candidate %d: got %q want %q", i, c.Name, want[i])
		}
		if c.Index != i {
			t.Fatalf("candidate %q: got index %d want %d", c.Name, c.Index, i)
		}
		if c.Path != filepath.Join(dir, want[i]) {
			t.Fatalf("unexpected path: %q", c.Path)
		}
	}
}

func TestListCandidatesMissingDirectory(t *testing.T) {
	if _, err := scanner.ListCandidates(filepath.Join(t.TempDir(), "missing"), ""); err == nil {
		t.Fatal("expected error for missing directory")
	}
}
