// Package backup exports and restores the translation cache databases
// as tar.xz archives.
package backup

import (
	"archive/tar"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ulikunitz/xz"

	"github.com/FocuswithJustin/ChronoVerse/core/errors"
	"github.com/FocuswithJustin/ChronoVerse/internal/logging"
)

// Export archives every cache database under dataDir into a tar.xz file
// at dstPath. It returns the number of databases archived.
func Export(dataDir, dstPath string) (int, error) {
	matches, err := filepath.Glob(filepath.Join(dataDir, "*.db"))
	if err != nil {
		return 0, errors.Wrap(err, "scanning data directory")
	}
	if len(matches) == 0 {
		return 0, errors.NewNotFound("cache database", dataDir)
	}

	if err := os.MkdirAll(filepath.Dir(dstPath), 0755); err != nil {
		return 0, errors.Wrap(err, "creating archive directory")
	}
	out, err := os.Create(dstPath)
	if err != nil {
		return 0, errors.Wrap(err, "creating archive file")
	}
	defer out.Close()

	xw, err := xz.NewWriter(out)
	if err != nil {
		return 0, errors.Wrap(err, "xz writer")
	}
	tw := tar.NewWriter(xw)

	now := time.Now()
	count := 0
	for _, path := range matches {
		info, err := os.Stat(path)
		if err != nil {
			return count, errors.Wrapf(err, "stat %s", path)
		}
		header, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return count, errors.Wrapf(err, "header for %s", path)
		}
		// Entries are stored flat by file name; timestamps are
		// normalized for reproducibility.
		header.Name = filepath.Base(path)
		header.ModTime = now

		if err := tw.WriteHeader(header); err != nil {
			return count, errors.Wrap(err, "writing tar header")
		}
		f, err := os.Open(path)
		if err != nil {
			return count, errors.Wrapf(err, "open %s", path)
		}
		_, err = io.Copy(tw, f)
		f.Close()
		if err != nil {
			return count, errors.Wrapf(err, "archiving %s", path)
		}
		count++
	}

	if err := tw.Close(); err != nil {
		return count, errors.Wrap(err, "closing tar stream")
	}
	if err := xw.Close(); err != nil {
		return count, errors.Wrap(err, "closing xz stream")
	}

	logging.Info("backup_exported", "archive", dstPath, "databases", count)
	return count, nil
}

// Import restores cache databases from a tar.xz archive into dataDir.
// Existing databases are kept unless overwrite is set; the cache is
// grow-only and a restore must not silently discard verses already
// collected. It returns the number of databases restored.
func Import(srcPath, dataDir string, overwrite bool) (int, error) {
	f, err := os.Open(srcPath)
	if err != nil {
		return 0, errors.Wrap(err, "open archive")
	}
	defer f.Close()

	xr, err := xz.NewReader(f)
	if err != nil {
		return 0, errors.Wrap(err, "xz reader")
	}
	tr := tar.NewReader(xr)

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return 0, errors.Wrap(err, "creating data directory")
	}

	count := 0
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return count, errors.Wrap(err, "reading tar header")
		}
		if header.Typeflag != tar.TypeReg {
			continue
		}

		// Entry names must be plain database file names; anything with
		// path separators is rejected to prevent traversal.
		name := header.Name
		if name != filepath.Base(name) || strings.Contains(name, "..") {
			return count, errors.NewValidation("archive entry", "unexpected path "+name)
		}
		if !strings.HasSuffix(name, ".db") {
			continue
		}

		dst := filepath.Join(dataDir, name)
		if _, err := os.Stat(dst); err == nil && !overwrite {
			logging.Warn("backup_skip_existing", "database", name)
			continue
		}

		out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			return count, errors.Wrapf(err, "creating %s", dst)
		}
		_, err = io.Copy(out, tr)
		if cerr := out.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return count, errors.Wrapf(err, "restoring %s", dst)
		}
		count++
	}

	logging.Info("backup_imported", "archive", srcPath, "databases", count)
	return count, nil
}
