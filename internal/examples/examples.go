// Package examples ships sample daily logs and a config file that the init
// command copies into a working directory.
package examples

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"

	"github.com/anurajdeol90/team-digest/internal/storage"
)

// Dir is the directory created under the destination.
const Dir = "examples"

//go:embed data
var files embed.FS

// CopyTo writes the examples to <dest>/examples and returns the written
// paths relative to dest. Existing files are kept unless overwrite is set.
func CopyTo(dest string, overwrite bool) ([]string, error) {
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return nil, fmt.Errorf("examples: create %s: %w", dest, err)
	}
	store, err := storage.NewFS(dest)
	if err != nil {
		return nil, fmt.Errorf("examples: %w", err)
	}

	var written []string
	err = fs.WalkDir(files, "data", func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel := path.Join(Dir, p[len("data/"):])
		if !overwrite {
			if _, err := store.Read(rel); err == nil {
				return nil
			}
		}
		data, err := files.ReadFile(p)
		if err != nil {
			return err
		}
		if err := store.Write(rel, data); err != nil {
			return err
		}
		written = append(written, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("examples: copy: %w", err)
	}
	return written, nil
}
