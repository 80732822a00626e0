package blender

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeFakeBlender(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "blender")
	if err := os.WriteFile(path, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatalf("write fake blender: %v", err)
	}
	return path
}

func TestLocator_ExplicitFlag(t *testing.T) {
	exe := writeFakeBlender(t, t.TempDir())

	path, probes, err := NewLocator(exe, "", nil).Resolve()
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if path != exe {
		t.Errorf("expected %s, got %s", exe, path)
	}
	if len(probes) != 1 || probes[0].Source != "flag" || !probes[0].Found {
		t.Errorf("unexpected probe trail: %+v", probes)
	}
}

func TestLocator_ExplicitFlagMissing(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "no-such-blender")

	_, _, err := NewLocator(missing, "", nil).Resolve()
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing explicit path, got: %v", err)
	}
}

func TestLocator_EnvVar(t *testing.T) {
	exe := writeFakeBlender(t, t.TempDir())
	t.Setenv("BLENDER_EXE", exe)
	t.Setenv("PATH", "")

	path, _, err := NewLocator("", "", nil).Resolve()
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if path != exe {
		t.Errorf("expected %s, got %s", exe, path)
	}
}

func TestLocator_EnvVarMissingFallsThrough(t *testing.T) {
	dir := t.TempDir()
	exe := writeFakeBlender(t, dir)

	t.Setenv("BLENDER_EXE", filepath.Join(dir, "gone"))

	path, probes, err := NewLocator("", exe, nil).Resolve()
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if path != exe {
		t.Errorf("expected config path %s, got %s", exe, path)
	}

	// The dead env candidate must appear in the trail.
	var sawEnvMiss bool
	for _, p := range probes {
		if p.Source == "env" && !p.Found {
			sawEnvMiss = true
		}
	}
	if !sawEnvMiss {
		t.Errorf("expected env probe recorded as not found: %+v", probes)
	}
}

func TestLocator_ConfigPath(t *testing.T) {
	exe := writeFakeBlender(t, t.TempDir())
	t.Setenv("BLENDER_EXE", "")
	t.Setenv("PATH", "")

	path, _, err := NewLocator("", exe, nil).Resolve()
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if path != exe {
		t.Errorf("expected %s, got %s", exe, path)
	}
}

func TestLocator_PathLookup(t *testing.T) {
	dir := t.TempDir()
	writeFakeBlender(t, dir)

	t.Setenv("BLENDER_EXE", "")
	t.Setenv("PATH", dir)
	t.Setenv("HOME", t.TempDir()) // keep ~/.local/bin out of the probe

	for _, p := range knownPaths() {
		if fileExists(p) {
			t.Skipf("blender actually installed at %s", p)
		}
	}

	path, _, err := NewLocator("", "", nil).Resolve()
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if filepath.Dir(path) != dir {
		t.Errorf("expected lookup in %s, got %s", dir, path)
	}
}

func TestLocator_NotFound(t *testing.T) {
	t.Setenv("BLENDER_EXE", "")
	t.Setenv("PATH", "")
	t.Setenv("HOME", t.TempDir())

	for _, p := range knownPaths() {
		if fileExists(p) {
			t.Skipf("blender actually installed at %s", p)
		}
	}

	_, probes, err := NewLocator("", "", nil).Resolve()
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got: %v", err)
	}
	if len(probes) == 0 {
		t.Error("expected a probe trail even on failure")
	}
}
