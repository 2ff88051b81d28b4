package importer

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/tally-dev/tally/internal/model"
)

// ErrCorruptArchive is returned for ZIP files that cannot be read.
var ErrCorruptArchive = errors.New("corrupt zip archive")

var zipMagic = []byte("PK\x03\x04")

// IsZip reports whether f is a ZIP container, by content or by extension.
func IsZip(f model.RawImportFile) bool {
	return bytes.HasPrefix(f.Data, zipMagic) || strings.EqualFold(path.Ext(f.Name), ".zip")
}

// Expand splits a container into the CSV files it holds. Plain files are
// returned unchanged. ZIP entries that are directories, platform metadata or
// not .csv are skipped; kept entries are named "archive.zip:entry.csv".
// An entry that cannot be read is reported in entryErrs as a *FileError and
// its siblings are still returned. err is set only when the archive itself
// is unreadable.
func Expand(f model.RawImportFile) (files []model.RawImportFile, entryErrs []error, err error) {
	if !IsZip(f) {
		return []model.RawImportFile{f}, nil, nil
	}

	zr, err := zip.NewReader(bytes.NewReader(f.Data), int64(len(f.Data)))
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w: %v", f.Name, ErrCorruptArchive, err)
	}

	for _, zf := range zr.File {
		if skipEntry(zf) {
			continue
		}
		name := f.Name + ":" + zf.Name
		data, err := readEntry(zf)
		if err != nil {
			entryErrs = append(entryErrs, &FileError{File: name, Err: err})
			continue
		}
		files = append(files, model.RawImportFile{Name: name, Data: data})
	}
	return files, entryErrs, nil
}

func skipEntry(zf *zip.File) bool {
	if zf.FileInfo().IsDir() {
		return true
	}
	name := zf.Name
	if strings.HasPrefix(name, "__MACOSX/") || strings.Contains(name, "/__MACOSX/") {
		return true
	}
	base := path.Base(name)
	if strings.HasPrefix(base, "._") || base == ".DS_Store" || base == "Thumbs.db" {
		return true
	}
	return !strings.EqualFold(path.Ext(base), ".csv")
}

func readEntry(zf *zip.File) ([]byte, error) {
	rc, err := zf.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
