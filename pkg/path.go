package pkg

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ardnew/mung"
)

// PathEnv names the environment variable holding additional directories,
// separated by [os.PathListSeparator], that are searched for source files.
var PathEnv = strings.ToUpper(Name) + "_PATH"

// ErrNotFound is returned by [Locate] when no candidate file exists.
var ErrNotFound = errors.New("source file not found")

// SearchPath returns the directories searched for relative source paths:
// the given dirs in order, followed by those listed in [PathEnv].
// Directories that do not exist are omitted.
func SearchPath(dirs ...string) []string {
	list := mung.Make(
		mung.WithSubjectItems(os.Getenv(PathEnv)),
		mung.WithDelim(string(os.PathListSeparator)),
		mung.WithPrefixItems(dirs...),
		mung.WithFilter(isDir),
	).String()

	return filepath.SplitList(list)
}

// Locate resolves name to an existing file. Absolute paths and paths found
// relative to the working directory are returned unchanged. Otherwise each
// directory of [SearchPath] is tried in order.
func Locate(name string, dirs ...string) (string, error) {
	if isFile(name) {
		return name, nil
	}

	if filepath.IsAbs(name) {
		return "", &fs.PathError{Op: "locate", Path: name, Err: ErrNotFound}
	}

	for _, dir := range SearchPath(dirs...) {
		if path := filepath.Join(dir, name); isFile(path) {
			return path, nil
		}
	}

	return "", &fs.PathError{Op: "locate", Path: name, Err: ErrNotFound}
}

func isDir(path string) bool {
	info, err := os.Stat(path)

	return err == nil && info.IsDir()
}

func isFile(path string) bool {
	info, err := os.Stat(path)

	return err == nil && !info.IsDir()
}
