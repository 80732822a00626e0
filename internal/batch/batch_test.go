package batch

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"

	"blenderctl/internal/blender"
)

// fakeBlender succeeds or fails depending on the blend file name: any
// file containing "bad" exits 1.
func fakeBlender(t *testing.T) *blender.Runner {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake-blender shell scripts are not runnable on Windows")
	}
	path := filepath.Join(t.TempDir(), "blender")
	script := `#!/bin/sh
case "$2" in
  *bad*) echo "processing failed" >&2; exit 1 ;;
  *) echo "processed $2" ;;
esac
`
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write fake blender: %v", err)
	}
	return blender.NewRunner(path, 30*time.Second, 1024*1024, nil)
}

func makeBlendFiles(t *testing.T, names ...string) (string, []string) {
	t.Helper()
	dir := t.TempDir()
	var files []string
	for _, name := range names {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte("BLENDER"), 0o644); err != nil {
			t.Fatalf("write blend file: %v", err)
		}
		files = append(files, path)
	}
	return dir, files
}

func buildInvocation(file string) blender.Invocation {
	return blender.Invocation{BlendFile: file, Script: "process.py"}
}

func TestGlob(t *testing.T) {
	dir, _ := makeBlendFiles(t, "a.blend", "b.blend", "notes.txt")

	files, err := Glob(dir, "*.blend")
	if err != nil {
		t.Fatalf("Glob failed: %v", err)
	}
	if len(files) != 2 {
		t.Errorf("expected 2 matches, got %d: %v", len(files), files)
	}
}

func TestGlob_EmptyIsError(t *testing.T) {
	if _, err := Glob(t.TempDir(), "*.blend"); err == nil {
		t.Fatal("expected error for empty glob")
	}
}

func TestExpandArgs(t *testing.T) {
	args := []string{"--output", "{output}", "--name", "{stem}-lod0"}

	got := ExpandArgs(args, "/in/chair.blend", "/out")
	want := []string{"--output", filepath.Join("/out", "chair.blend"), "--name", "chair-lod0"}

	for i := range want {
		if got[i] != want[i] {
			t.Errorf("arg[%d]: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestExpandArgs_NoOutputDir(t *testing.T) {
	got := ExpandArgs([]string{"{output}", "{stem}"}, "/in/chair.blend", "")
	if got[0] != "{output}" {
		t.Errorf("{output} must stay literal without an output dir, got %q", got[0])
	}
	if got[1] != "chair" {
		t.Errorf("{stem} expansion failed, got %q", got[1])
	}
}

func TestPool_Process(t *testing.T) {
	defer goleak.VerifyNone(t)

	runner := fakeBlender(t)
	_, files := makeBlendFiles(t, "a.blend", "bad1.blend", "c.blend", "bad2.blend", "e.blend")

	pool := NewPool(runner, 3, nil)
	report := pool.Process(context.Background(), "process.py", "*.blend", files, buildInvocation)

	// N matched files means exactly N entries, success+failed == N.
	if len(report.Results) != len(files) {
		t.Fatalf("expected %d results, got %d", len(files), len(report.Results))
	}
	if report.Success+report.Failed != len(files) {
		t.Errorf("tally mismatch: %d + %d != %d", report.Success, report.Failed, len(files))
	}
	if report.Success != 3 || report.Failed != 2 {
		t.Errorf("expected 3 success / 2 failed, got %d / %d", report.Success, report.Failed)
	}
	if !report.AnyFailed() {
		t.Error("expected AnyFailed")
	}
	if report.RunID == "" {
		t.Error("expected a run ID")
	}

	seen := map[string]bool{}
	for _, fr := range report.Results {
		seen[fr.File] = true
	}
	for _, f := range files {
		if !seen[f] {
			t.Errorf("missing result for %s", f)
		}
	}
}

func TestPool_SequentialDefault(t *testing.T) {
	defer goleak.VerifyNone(t)

	runner := fakeBlender(t)
	_, files := makeBlendFiles(t, "a.blend", "b.blend")

	// workers < 1 clamps to 1
	pool := NewPool(runner, 0, nil)
	report := pool.Process(context.Background(), "process.py", "*.blend", files, buildInvocation)

	if report.Failed != 0 || report.Success != 2 {
		t.Errorf("expected all success, got %d/%d", report.Success, report.Failed)
	}
}

func TestPool_OnResultStreams(t *testing.T) {
	defer goleak.VerifyNone(t)

	runner := fakeBlender(t)
	_, files := makeBlendFiles(t, "a.blend", "bad.blend")

	var mu sync.Mutex
	var statuses []bool
	pool := NewPool(runner, 2, nil)
	pool.OnResult = func(fr FileResult) {
		mu.Lock()
		statuses = append(statuses, fr.OK)
		mu.Unlock()
	}

	pool.Process(context.Background(), "process.py", "*.blend", files, buildInvocation)

	if len(statuses) != 2 {
		t.Fatalf("expected 2 callbacks, got %d", len(statuses))
	}
}

func TestPool_FailureDoesNotCancelSiblings(t *testing.T) {
	defer goleak.VerifyNone(t)

	runner := fakeBlender(t)
	names := []string{"bad.blend"}
	for i := 0; i < 9; i++ {
		names = append(names, string(rune('a'+i))+".blend")
	}
	_, files := makeBlendFiles(t, names...)

	pool := NewPool(runner, 4, nil)
	report := pool.Process(context.Background(), "process.py", "*.blend", files, buildInvocation)

	if report.Success != 9 || report.Failed != 1 {
		t.Errorf("one failure must not stop the rest: got %d/%d", report.Success, report.Failed)
	}
}
