/*
Package output persists the profile and history tables as CSV.
*/
package output

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/shanehull/kabuscraper/internal/types"
)

const bom = "\ufeff"

type Options struct {
	ProfileFile string
	HistoryFile string
	BOM         bool // Prefix each file with a UTF-8 byte order mark
}

// Paths are the files a WriteTables call produced.
type Paths struct {
	Profile string
	History string
}

// WriteTables writes both tables into dir. Each file is written to a temporary file
// first and renamed into place, so a failed run never leaves a half-written table.
// Empty tables still get their header row.
func WriteTables(dir string, profiles []types.ProfileRow, history []types.HistoryRow, opts Options) (Paths, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Paths{}, fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	if profiles == nil {
		profiles = []types.ProfileRow{}
	}
	if history == nil {
		history = []types.HistoryRow{}
	}

	paths := Paths{
		Profile: filepath.Join(dir, opts.ProfileFile),
		History: filepath.Join(dir, opts.HistoryFile),
	}

	if err := writeCSV(paths.Profile, &profiles, opts.BOM); err != nil {
		return Paths{}, err
	}
	if err := writeCSV(paths.History, &history, opts.BOM); err != nil {
		return Paths{}, err
	}

	return paths, nil
}

func writeCSV(path string, rows interface{}, withBOM bool) error {
	var buf bytes.Buffer
	if withBOM {
		buf.WriteString(bom)
	}
	if err := gocsv.Marshal(rows, &buf); err != nil {
		return fmt.Errorf("failed to encode %s: %w", filepath.Base(path), err)
	}

	return writeAtomic(path, buf.Bytes())
}

func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", path, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to set permissions on %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to move %s into place: %w", path, err)
	}
	return nil
}
