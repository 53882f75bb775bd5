// Package asset defines the error kind shared by every loader that turns a
// file on disk into a GPU resource (models, textures, shaders, cube maps).
package asset

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

var (
	// ErrNotFound reports a missing asset file.
	ErrNotFound = errors.New("asset not found")
	// ErrFormat reports a file that exists but cannot be parsed or decoded.
	ErrFormat = errors.New("asset format")
	// ErrUpload reports a GPU-side creation failure for an otherwise valid asset.
	ErrUpload = errors.New("asset upload")
)

// Error describes a failed asset operation.
type Error struct {
	Op   string // "import", "texture", "shader", "skybox"
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Wrap builds an *Error, mapping fs.ErrNotExist onto ErrNotFound.
func Wrap(op, path string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, fs.ErrNotExist) && !errors.Is(err, ErrNotFound) {
		err = fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return &Error{Op: op, Path: path, Err: err}
}

// Formatf builds an *Error wrapping ErrFormat.
func Formatf(op, path, format string, args ...any) error {
	return &Error{Op: op, Path: path, Err: fmt.Errorf("%w: %s", ErrFormat, fmt.Sprintf(format, args...))}
}

// ReadFile reads an asset, returning an *Error on failure.
func ReadFile(op, path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, Wrap(op, path, err)
	}
	return data, nil
}

// Resolve joins ref onto the directory containing source, unless ref is
// already absolute. Textures referenced by a model are looked up next to the
// model file, never relative to the working directory.
func Resolve(source, ref string) string {
	if filepath.IsAbs(ref) {
		return ref
	}
	return filepath.Join(filepath.Dir(source), filepath.FromSlash(ref))
}
