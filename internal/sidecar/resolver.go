package sidecar

import (
	"os"
	"path/filepath"

	"github.com/pixoolab/divoom-bridge/internal/domain"
)

// Resolver locates the sidecar executable. Resolution has no side effects
// and is safe to call on every start attempt; the environment may change
// between runs, so results are never cached.
type Resolver struct {
	// Override is an explicit path to the executable, absolute or relative
	// to the working directory / the bridge executable directory. When set
	// but unresolvable, Resolve fails instead of falling through to the
	// conventional locations.
	Override string

	// Name is the expected executable file name.
	Name string

	// ExeDir overrides the directory of the running executable. Empty means
	// it is derived from os.Executable on each call.
	ExeDir string
}

func NewResolver(override string) *Resolver {
	return &Resolver{
		Override: override,
		Name:     executableName,
	}
}

// Resolve returns the absolute path of the sidecar executable, checking the
// override first, then a file next to the bridge executable, then the
// conventional sidecar/ subdirectory.
func (r *Resolver) Resolve() (string, error) {
	if r.Override != "" {
		return r.resolveOverride()
	}

	exeDir, err := r.exeDir()
	if err != nil {
		return "", domain.ErrSidecarNotFound{Name: r.Name}
	}

	nextToExe := filepath.Join(exeDir, r.Name)
	if fileExists(nextToExe) {
		return nextToExe, nil
	}

	inSidecarDir := filepath.Join(exeDir, "sidecar", r.Name)
	if fileExists(inSidecarDir) {
		return inSidecarDir, nil
	}

	return "", domain.ErrSidecarNotFound{
		Name:      r.Name,
		Attempted: []string{nextToExe, inSidecarDir},
	}
}

func (r *Resolver) resolveOverride() (string, error) {
	if filepath.IsAbs(r.Override) {
		if fileExists(r.Override) {
			return r.Override, nil
		}
		return "", domain.ErrSidecarNotFound{Name: r.Override, Attempted: []string{r.Override}}
	}

	var attempted []string

	if cwd, err := os.Getwd(); err == nil {
		candidate := filepath.Join(cwd, r.Override)
		if fileExists(candidate) {
			return candidate, nil
		}
		attempted = append(attempted, candidate)
	}

	if exeDir, err := r.exeDir(); err == nil {
		candidate := filepath.Join(exeDir, r.Override)
		if fileExists(candidate) {
			return candidate, nil
		}
		attempted = append(attempted, candidate)
	}

	return "", domain.ErrSidecarNotFound{Name: r.Override, Attempted: attempted}
}

func (r *Resolver) exeDir() (string, error) {
	if r.ExeDir != "" {
		return r.ExeDir, nil
	}
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Dir(exe), nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
