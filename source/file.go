package source

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"

	"github.com/kbukum/riv/atom"
	"github.com/kbukum/riv/errors"
)

// DescribeFile hashes the file at path and returns its task metadata with
// a fresh correlation id.
func DescribeFile(path string) (atom.TaskMetadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return atom.TaskMetadata{}, errors.FromIO(err)
	}
	defer f.Close()

	h := sha256.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return atom.TaskMetadata{}, errors.FromIO(err)
	}

	origin := "file"
	if t, ok := DetectType(path); ok {
		origin = string(t)
	}
	return atom.NewTaskMetadata(origin, filepath.Base(path), hex.EncodeToString(h.Sum(nil)), n), nil
}
