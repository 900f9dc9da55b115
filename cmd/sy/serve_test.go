package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestServeCmd_Help(t *testing.T) {
	out, err := run(t, "serve", "--help")
	if err != nil {
		t.Fatalf("serve --help failed: %v", err)
	}
	for _, want := range []string{"--config", "swapyard.yaml", "--seed", "--port"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected help to mention %q, got: %s", want, out)
		}
	}
}

func TestServeCmd_MissingConfig(t *testing.T) {
	_, err := run(t, "serve", "--config", "/nonexistent/swapyard.yaml")
	if err == nil {
		t.Fatal("expected error for missing config")
	}
	if !strings.Contains(err.Error(), "load config") {
		t.Errorf("error = %q, want to contain %q", err.Error(), "load config")
	}
}

func TestServeCmd_BadSeed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "swapyard.yaml")
	if err := os.WriteFile(path, []byte("log:\n  level: error\n"), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := run(t, "serve", "-c", path, "--seed", "testdata/missing.yaml")
	if err == nil || !strings.Contains(err.Error(), "roster: read") {
		t.Errorf("err = %v, want roster read error", err)
	}
}
