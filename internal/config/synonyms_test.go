package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadSynonymsEmptyPath(t *testing.T) {
	table, err := LoadSynonyms("")
	if err != nil {
		t.Fatalf("LoadSynonyms(\"\") error = %v", err)
	}
	if table != nil {
		t.Fatalf("expected nil table, got %v", table)
	}
}

func TestLoadSynonymsParsesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "synonyms.yaml")
	content := "ethanol: [biofuel, e15]\ncorn:\n  - maize\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	table, err := LoadSynonyms(path)
	if err != nil {
		t.Fatalf("LoadSynonyms() error = %v", err)
	}
	if got := table["ethanol"]; len(got) != 2 || got[0] != "biofuel" || got[1] != "e15" {
		t.Fatalf("ethanol synonyms = %v", got)
	}
	if got := table["corn"]; len(got) != 1 || got[0] != "maize" {
		t.Fatalf("corn synonyms = %v", got)
	}
}

func TestLoadSynonymsRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "synonyms.yaml")
	if err := os.WriteFile(path, []byte("ethanol: [unclosed"), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := LoadSynonyms(path); err == nil {
		t.Fatalf("expected parse error")
	}
}
