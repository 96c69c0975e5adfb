package sidecar

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/pixoolab/divoom-bridge/internal/domain"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatal(err)
	}
}

// chdir mirrors testing.T.Chdir, which requires Go 1.24.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatal(err)
		}
	})
}

func TestResolveOverrideAbsolute(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	exe := filepath.Join(dir, "helper")
	touch(t, exe)

	r := &Resolver{Override: exe, Name: "helper"}
	got, err := r.Resolve()
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got != exe {
		t.Errorf("expected %s, got %s", exe, got)
	}
}

func TestResolveOverrideMissingDoesNotFallBack(t *testing.T) {
	t.Parallel()

	// A perfectly valid conventional location must not rescue a bad override.
	exeDir := t.TempDir()
	touch(t, filepath.Join(exeDir, "helper"))

	r := &Resolver{
		Override: filepath.Join(t.TempDir(), "does-not-exist"),
		Name:     "helper",
		ExeDir:   exeDir,
	}

	_, err := r.Resolve()
	var notFound domain.ErrSidecarNotFound
	if !errors.As(err, &notFound) {
		t.Fatalf("expected ErrSidecarNotFound, got %v", err)
	}
	if len(notFound.Attempted) == 0 {
		t.Error("expected attempted paths in the error")
	}
}

func TestResolveOverrideRelativeToCwd(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "tools", "helper"))
	chdir(t, dir)

	r := &Resolver{Override: filepath.Join("tools", "helper"), Name: "helper"}
	got, err := r.Resolve()
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got != filepath.Join(dir, "tools", "helper") {
		t.Errorf("unexpected path %s", got)
	}
}

func TestResolveOverrideRelativeToExeDir(t *testing.T) {
	exeDir := t.TempDir()
	touch(t, filepath.Join(exeDir, "tools", "helper"))
	chdir(t, t.TempDir()) // cwd candidate must miss

	r := &Resolver{
		Override: filepath.Join("tools", "helper"),
		Name:     "helper",
		ExeDir:   exeDir,
	}
	got, err := r.Resolve()
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got != filepath.Join(exeDir, "tools", "helper") {
		t.Errorf("unexpected path %s", got)
	}
}

func TestResolveNextToExecutable(t *testing.T) {
	t.Parallel()

	exeDir := t.TempDir()
	want := filepath.Join(exeDir, "helper")
	touch(t, want)

	r := &Resolver{Name: "helper", ExeDir: exeDir}
	got, err := r.Resolve()
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestResolveSidecarSubdirectory(t *testing.T) {
	t.Parallel()

	exeDir := t.TempDir()
	want := filepath.Join(exeDir, "sidecar", "helper")
	touch(t, want)

	r := &Resolver{Name: "helper", ExeDir: exeDir}
	got, err := r.Resolve()
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestResolveNothingFound(t *testing.T) {
	t.Parallel()

	r := &Resolver{Name: "helper", ExeDir: t.TempDir()}
	_, err := r.Resolve()

	var notFound domain.ErrSidecarNotFound
	if !errors.As(err, &notFound) {
		t.Fatalf("expected ErrSidecarNotFound, got %v", err)
	}
	if len(notFound.Attempted) != 2 {
		t.Errorf("expected 2 attempted paths, got %d", len(notFound.Attempted))
	}
}

func TestResolveHasNoSideEffects(t *testing.T) {
	t.Parallel()

	exeDir := t.TempDir()
	touch(t, filepath.Join(exeDir, "helper"))

	r := &Resolver{Name: "helper", ExeDir: exeDir}
	first, err := r.Resolve()
	if err != nil {
		t.Fatal(err)
	}
	second, err := r.Resolve()
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Errorf("resolution is not stable: %s vs %s", first, second)
	}
}
