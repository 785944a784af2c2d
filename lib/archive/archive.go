package archive

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zip"
)

var ErrEmptyFolder = errors.New("archive folder has no files")

const nameLayout = "2006_01_02_15_04"

// Name returns the archive file name for a run started at `now`. Two runs
// within the same minute get the same name.
func Name(now time.Time) string {
	return fmt.Sprintf("orders_%s.zip", now.Format(nameLayout))
}

// ZipFolder writes every regular file below `folder` into a new zip at
// `dest`, with slash separated names relative to `folder`. `dest` is
// overwritten if it exists.
func ZipFolder(folder, dest string) (int, error) {
	info, err := os.Stat(folder)
	if err != nil {
		return 0, err
	}
	if !info.IsDir() {
		return 0, fmt.Errorf("%s is not a directory", folder)
	}

	var files []string
	err = filepath.WalkDir(folder, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if len(files) == 0 {
		return 0, fmt.Errorf("%w: %s", ErrEmptyFolder, folder)
	}

	out, err := os.Create(dest)
	if err != nil {
		return 0, err
	}
	defer out.Close()

	w := zip.NewWriter(out)
	for _, path := range files {
		err = addFile(w, folder, path)
		if err != nil {
			w.Close()
			return 0, err
		}
	}
	err = w.Close()
	if err != nil {
		return 0, err
	}
	return len(files), out.Close()
}

func addFile(w *zip.Writer, root, path string) error {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return err
	}
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	header.Name = filepath.ToSlash(rel)
	header.Method = zip.Deflate

	entry, err := w.CreateHeader(header)
	if err != nil {
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = io.Copy(entry, f)
	if err != nil {
		return fmt.Errorf("add %s: %w", rel, err)
	}
	return nil
}
