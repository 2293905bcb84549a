package util

import (
	"archive/zip"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// ZipDir writes every regular file under dir into w. Entry names are relative to dir
// and use forward slashes. Entries are written in lexical order.
func ZipDir(dir string, w io.Writer) error {
	archive := zip.NewWriter(w)

	err := filepath.WalkDir(dir, func(filePath string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(dir, filePath)
		if err != nil {
			return err
		}

		header, err := zip.FileInfoHeader(info)
		if err != nil {
			return err
		}
		header.Name = filepath.ToSlash(relPath)
		header.Method = zip.Deflate

		writer, err := archive.CreateHeader(header)
		if err != nil {
			return err
		}

		fileReader, err := os.Open(filePath)
		if err != nil {
			return err
		}
		defer fileReader.Close()

		_, err = io.Copy(writer, fileReader)
		return err
	})
	if err != nil {
		archive.Close()
		return err
	}

	return archive.Close()
}

func ZipDirToFile(dir string, zipFile string) error {
	out, err := os.Create(zipFile)
	if err != nil {
		return err
	}

	if err := ZipDir(dir, out); err != nil {
		out.Close()
		return err
	}

	return out.Close()
}
