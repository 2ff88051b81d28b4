package importer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tally-dev/tally/internal/model"
)

// FileInfo describes a statement file in the import directory.
type FileInfo struct {
	Name string
	Path string
	Size int64
}

// ErrUnsupportedFile is returned for files that are neither CSV nor ZIP.
var ErrUnsupportedFile = errors.New("unsupported file type")

// ProcessedDir is the subdirectory of the import dir that receives
// statements after a committed import.
const ProcessedDir = "processed"

// Supported reports whether name has an importable extension.
func Supported(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".zip":
		return true
	}
	return false
}

// Scan returns the CSV and ZIP files directly inside dir. A missing dir
// yields no files.
func Scan(dir string) ([]FileInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading import dir: %w", err)
	}

	var files []FileInfo
	for _, e := range entries {
		if e.IsDir() || !Supported(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		files = append(files, FileInfo{
			Name: e.Name(),
			Path: filepath.Join(dir, e.Name()),
			Size: info.Size(),
		})
	}
	return files, nil
}

// ReadFile loads a statement from disk. The file is named by its base name.
func ReadFile(path string) (model.RawImportFile, error) {
	if !Supported(path) {
		return model.RawImportFile{}, fmt.Errorf("%s: %w", path, ErrUnsupportedFile)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return model.RawImportFile{}, fmt.Errorf("reading %s: %w", path, err)
	}
	return model.RawImportFile{Name: filepath.Base(path), Data: data}, nil
}

// MarkProcessed moves dir/fileName into dir/processed/.
func MarkProcessed(dir, fileName string) error {
	src := filepath.Join(dir, fileName)
	dstDir := filepath.Join(dir, ProcessedDir)

	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return fmt.Errorf("creating processed dir: %w", err)
	}

	dst := filepath.Join(dstDir, fileName)
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("moving %s to processed: %w", fileName, err)
	}
	return nil
}
