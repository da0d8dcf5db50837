package repl

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestNewHistory(t *testing.T) {
	h := NewHistory("", 0)
	if h.limit != DefaultHistorySize {
		t.Errorf("limit = %d, want %d", h.limit, DefaultHistorySize)
	}
	if h.Len() != 0 || h.Lines() != nil {
		t.Errorf("new history holds %q", h.Lines())
	}
}

func TestDefaultHistoryFile(t *testing.T) {
	if !strings.HasSuffix(DefaultHistoryFile(), filepath.Join(".issuemesh", "history")) {
		t.Errorf("DefaultHistoryFile() = %q", DefaultHistoryFile())
	}
}

func TestHistory_Add(t *testing.T) {
	h := NewHistory("", 3)

	for _, line := range []string{"issue list", "issue list", "watch", "issue get 1", "issue get 2"} {
		h.Add(line)
	}

	want := []string{"watch", "issue get 1", "issue get 2"}
	if got := h.Lines(); !reflect.DeepEqual(got, want) {
		t.Errorf("Lines() = %q, want %q", got, want)
	}

	h.Lines()[0] = "changed"
	if h.Lines()[0] != "watch" {
		t.Error("Lines() should return a copy")
	}
}

func TestHistory_SaveLoad(t *testing.T) {
	file := filepath.Join(t.TempDir(), "nested", "history")

	h := NewHistory(file, 10)
	h.Add("issue list")
	h.Add("watch")
	if err := h.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	info, err := os.Stat(file)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("history mode = %o, want 600", perm)
	}

	loaded := NewHistory(file, 1)
	if err := loaded.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := loaded.Lines(); !reflect.DeepEqual(got, []string{"watch"}) {
		t.Errorf("Load should keep the newest lines, got %q", got)
	}
}

func TestHistory_NoFile(t *testing.T) {
	missing := NewHistory(filepath.Join(t.TempDir(), "missing"), 10)
	if err := missing.Load(); err != nil {
		t.Errorf("Load of a missing file = %v", err)
	}

	mem := NewHistory("", 10)
	mem.Add("watch")
	if err := mem.Save(); err != nil {
		t.Errorf("Save without file = %v", err)
	}
	if err := mem.Load(); err != nil {
		t.Errorf("Load without file = %v", err)
	}
}
