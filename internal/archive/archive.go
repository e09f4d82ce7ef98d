// Package archive packs generated book output into compressed tar archives
// and unpacks them again. The compression is chosen by file suffix: .tar.xz
// or .tar.gz.
package archive

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ulikunitz/xz"
)

// Pack writes the files of srcDir (non-recursively named by their base
// path) into a compressed tar archive at dstPath. The suffix of dstPath
// selects the compression.
func Pack(srcDir, dstPath string) error {
	out, err := os.Create(dstPath)
	if err != nil {
		return fmt.Errorf("create archive: %w", err)
	}
	defer out.Close()

	var compressor io.WriteCloser
	switch {
	case strings.HasSuffix(dstPath, ".tar.xz"):
		xzw, err := xz.NewWriter(out)
		if err != nil {
			return fmt.Errorf("xz writer: %w", err)
		}
		compressor = xzw
	case strings.HasSuffix(dstPath, ".tar.gz"):
		compressor = gzip.NewWriter(out)
	default:
		return fmt.Errorf("unsupported archive suffix: %s", dstPath)
	}

	tw := tar.NewWriter(compressor)
	now := time.Now()

	err = filepath.Walk(srcDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		relPath, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}
		if relPath == "." {
			return nil
		}

		header, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}
		header.Name = filepath.ToSlash(relPath)
		if info.IsDir() {
			header.Name += "/"
		}
		header.ModTime = now

		if err := tw.WriteHeader(header); err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = io.Copy(tw, f)
		return err
	})
	if err != nil {
		return fmt.Errorf("pack %s: %w", srcDir, err)
	}

	if err := tw.Close(); err != nil {
		return fmt.Errorf("close tar: %w", err)
	}
	if err := compressor.Close(); err != nil {
		return fmt.Errorf("close compressor: %w", err)
	}
	return nil
}

// Unpack extracts an archive created by Pack into dstDir, auto-detecting
// the compression from the suffix. Entry names that would escape dstDir are
// rejected.
func Unpack(archivePath, dstDir string) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer f.Close()

	var reader io.Reader
	switch {
	case strings.HasSuffix(archivePath, ".tar.xz"):
		xzr, err := xz.NewReader(f)
		if err != nil {
			return fmt.Errorf("xz reader: %w", err)
		}
		reader = xzr
	case strings.HasSuffix(archivePath, ".tar.gz"):
		gzr, err := gzip.NewReader(f)
		if err != nil {
			return fmt.Errorf("gzip reader: %w", err)
		}
		defer gzr.Close()
		reader = gzr
	default:
		return fmt.Errorf("unsupported archive suffix: %s", archivePath)
	}

	tr := tar.NewReader(reader)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read header: %w", err)
		}

		target, err := securePath(dstDir, header.Name)
		if err != nil {
			return err
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return err
			}
			out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, os.FileMode(header.Mode)&0777)
			if err != nil {
				return err
			}
			if _, err := io.Copy(out, tr); err != nil {
				out.Close()
				return err
			}
			if err := out.Close(); err != nil {
				return err
			}
		}
	}
}

// ReadFile extracts a single named file from an archive without unpacking
// the rest.
func ReadFile(archivePath, name string) ([]byte, error) {
	f, err := os.Open(archivePath)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	defer f.Close()

	var reader io.Reader
	switch {
	case strings.HasSuffix(archivePath, ".tar.xz"):
		xzr, err := xz.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("xz reader: %w", err)
		}
		reader = xzr
	case strings.HasSuffix(archivePath, ".tar.gz"):
		gzr, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("gzip reader: %w", err)
		}
		defer gzr.Close()
		reader = gzr
	default:
		return nil, fmt.Errorf("unsupported archive suffix: %s", archivePath)
	}

	tr := tar.NewReader(reader)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			return nil, fmt.Errorf("file not found in archive: %s", name)
		}
		if err != nil {
			return nil, fmt.Errorf("read header: %w", err)
		}
		if header.Name == name {
			return io.ReadAll(tr)
		}
	}
}

// securePath joins an archive entry name with dstDir, rejecting traversal.
func securePath(dstDir, name string) (string, error) {
	target := filepath.Join(dstDir, filepath.FromSlash(name))
	rel, err := filepath.Rel(dstDir, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("archive entry escapes destination: %s", name)
	}
	return target, nil
}
