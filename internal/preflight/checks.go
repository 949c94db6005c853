package preflight

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"

	"geotag/internal/deps"
	"geotag/internal/exiftool"
	"geotag/internal/history"
)

// CheckExifTool verifies the binary resolves on PATH and answers -ver.
func CheckExifTool(ctx context.Context, binary string, timeoutSeconds int) Result {
	const name = "ExifTool"

	requirement := deps.Requirement{
		Name:    name,
		Command: binary,
		Why:     "write GPS metadata",
	}
	version := func(ctx context.Context, path string) (string, error) {
		client, err := exiftool.New(path, timeoutSeconds)
		if err != nil {
			return "", err
		}
		return client.Version(ctx)
	}
	status := requirement.Check(ctx, version)
	if !status.Available {
		return Result{Name: name, Detail: fmt.Sprintf("%s; geotag needs it to %s", status.Detail, status.Why)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%s)", status.Version, status.Path)}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckCreatableDirectory passes when path is an accessible directory or
// when its nearest existing ancestor would let geotag create it.
func CheckCreatableDirectory(name, path string) Result {
	if _, err := os.Stat(path); err == nil || !os.IsNotExist(err) {
		return CheckDirectoryAccess(name, path)
	}
	parent := filepath.Dir(filepath.Clean(path))
	for {
		info, err := os.Stat(parent)
		if err == nil {
			if !info.IsDir() {
				return Result{Name: name, Detail: fmt.Sprintf("%s (error: %s is not a directory)", path, parent)}
			}
			break
		}
		next := filepath.Dir(parent)
		if next == parent {
			break
		}
		parent = next
	}
	if err := unix.Access(parent, unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: cannot create under %s: %v)", path, parent, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (will be created)", path)}
}

// CheckHistory opens an existing save journal and reads from it. A journal
// that has not been created yet passes.
func CheckHistory(ctx context.Context, path string) Result {
	const name = "Save history"

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (not created yet)", path)}
	}
	store, err := history.Open(path)
	if err != nil {
		if errors.Is(err, history.ErrSchemaMismatch) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: schema mismatch, delete the file to recreate it)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	defer store.Close()

	batches, err := store.Recent(ctx, 1)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	if len(batches) == 0 {
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (empty)", path)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (last save %s)", path, batches[0].Started.Local().Format("2006-01-02 15:04"))}
}
