// Package fileutil holds the file copy helpers used for backups.
package fileutil

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// CopyVerified copies src to dst, which must not exist, keeping the source
// permissions and modification time. The new file is read back and compared
// with the source by SHA-256; on any failure dst is removed.
func CopyVerified(src, dst string) (err error) {
	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}
	want, err := copyHashed(src, dst, info.Mode().Perm())
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(dst)
		}
	}()

	got, n, err := hashFile(dst)
	if err != nil {
		return fmt.Errorf("verify copy: %w", err)
	}
	if n != info.Size() {
		return fmt.Errorf("copy size mismatch: source %d bytes, copy %d bytes", info.Size(), n)
	}
	if !bytes.Equal(want, got) {
		return errors.New("copy hash mismatch")
	}
	return os.Chtimes(dst, info.ModTime(), info.ModTime())
}

// copyHashed creates dst exclusively and returns the hash of what was read
// from src.
func copyHashed(src, dst string, perm os.FileMode) ([]byte, error) {
	in, err := os.Open(src)
	if err != nil {
		return nil, err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		return nil, err
	}
	h := sha256.New()
	_, copyErr := io.Copy(out, io.TeeReader(in, h))
	if closeErr := out.Close(); copyErr == nil {
		copyErr = closeErr
	}
	if copyErr != nil {
		_ = os.Remove(dst)
		return nil, copyErr
	}
	return h.Sum(nil), nil
}

func hashFile(path string) ([]byte, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()
	h := sha256.New()
	n, err := io.Copy(h, f)
	return h.Sum(nil), n, err
}

// CopyUnique copies src to path, or to the first "<stem>-N<ext>" sibling
// that does not exist yet, and returns the name it used. Each name is claimed
// by the exclusive create itself, so concurrent callers never share one.
func CopyUnique(src, path string) (string, error) {
	dir, base := filepath.Split(path)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	candidate := path
	for n := 1; ; n++ {
		err := CopyVerified(src, candidate)
		if err == nil {
			return candidate, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return "", err
		}
		candidate = filepath.Join(dir, stem+"-"+strconv.Itoa(n)+ext)
	}
}
