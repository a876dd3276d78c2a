// Package fsx holds the file moves the pipeline relies on.
//
// A move never overwrites: the destination must not exist. Rename is the only
// synchronization primitive; the cross-device fallback guarantees that on success
// the source is gone and the destination exists, and on failure no partial copy
// is left behind.
package fsx

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
)

// Replaceable for tests that need to simulate EXDEV or permission failures.
var (
	renameFunc = os.Rename
	removeFunc = os.Remove
)

// DirPerm is the mode used for every directory the pipeline creates.
const DirPerm = 0o755

// CrossDeviceError reports that the fallback copy across file systems failed.
type CrossDeviceError struct {
	Src string
	Dst string
	Err error
}

func (e *CrossDeviceError) Error() string {
	return fmt.Sprintf("cross-device move %q -> %q: %v", e.Src, e.Dst, e.Err)
}

func (e *CrossDeviceError) Unwrap() error { return e.Err }

// IsCrossDevice reports whether err came from a failed cross-device move.
func IsCrossDevice(err error) bool {
	var e *CrossDeviceError
	return errors.As(err, &e)
}

// EnsureDir creates dir and any missing parents. An existing directory is not an error.
func EnsureDir(dir string) error {
	fi, err := os.Stat(dir)
	if err == nil {
		if fi.IsDir() {
			return nil
		}
		return fmt.Errorf("%q exists and is not a directory", dir)
	}
	if !os.IsNotExist(err) {
		return err
	}
	return os.MkdirAll(dir, DirPerm)
}

// Move relocates src to dst, creating dst's parent directories.
//
// A move onto itself is a no-op. If dst already exists the move fails with an
// error wrapping os.ErrExist.
func Move(src, dst string) error {
	src = filepath.Clean(src)
	dst = filepath.Clean(dst)
	if src == dst {
		if _, err := os.Lstat(src); err != nil {
			return err
		}
		return nil
	}

	if _, err := os.Lstat(dst); err == nil {
		return fmt.Errorf("move %q -> %q: %w", src, dst, os.ErrExist)
	} else if !os.IsNotExist(err) {
		return err
	}

	if err := EnsureDir(filepath.Dir(dst)); err != nil {
		return err
	}

	err := renameFunc(src, dst)
	if err == nil {
		return nil
	}
	if !isEXDEV(err) {
		return err
	}
	if err := copyThenRemove(src, dst); err != nil {
		return &CrossDeviceError{Src: src, Dst: dst, Err: err}
	}
	return nil
}

// copyThenRemove is the fallback when rename cannot cross file systems.
// The copy is synced before the source goes away; any failure removes the copy.
func copyThenRemove(src, dst string) (err error) {
	if err := copyFile(src, dst); err != nil {
		_ = os.Remove(dst)
		return err
	}
	if err := removeFunc(src); err != nil {
		_ = os.Remove(dst)
		return err
	}
	return nil
}

// copyFile copies src to a new file dst, preserving the mode bits.
// dst must not exist.
func copyFile(src, dst string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer srcFile.Close()

	fi, err := srcFile.Stat()
	if err != nil {
		return err
	}

	dstFile, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, fi.Mode().Perm())
	if err != nil {
		return err
	}

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		dstFile.Close()
		return err
	}
	if err := dstFile.Sync(); err != nil {
		dstFile.Close()
		return err
	}
	return dstFile.Close()
}

// WriteFileAtomic writes data to dir/name through a temp file in the same
// directory followed by a rename. An existing file is replaced.
func WriteFileAtomic(dir, name string, data []byte, perm os.FileMode) error {
	if err := EnsureDir(dir); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+name+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := renameFunc(tmpName, filepath.Join(dir, name)); err != nil {
		return err
	}
	_ = syncDir(dir)
	return nil
}

func syncDir(dir string) error {
	if runtime.GOOS == "windows" {
		return nil
	}
	f, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Sync()
}
