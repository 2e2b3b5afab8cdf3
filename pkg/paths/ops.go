package paths

import (
	"archive/zip"
	"context"
	"io"
	"path"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/klauspost/compress/flate"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/EsotericSoftware/wildcard/pkg/fsx"
	"github.com/EsotericSoftware/wildcard/pkg/logx"
)

// Result records the outcome of one bulk operation item.
type Result struct {
	Source string
	Dest   string
	Err    error
}

// Report aggregates the per-item results of a bulk operation. One item
// failing never stops the remaining items; callers inspect the report after
// the operation has run over the whole set.
type Report struct {
	Results []Result
}

// Add records one item outcome.
func (r *Report) Add(source, dest string, err error) {
	r.Results = append(r.Results, Result{Source: source, Dest: dest, Err: err})
}

// Failed reports whether any item failed.
func (r *Report) Failed() bool {
	for _, res := range r.Results {
		if res.Err != nil {
			return true
		}
	}
	return false
}

// Err returns an aggregate error naming the first failure and the failure
// count, or nil when every item succeeded.
func (r *Report) Err() error {
	var first error
	failed := 0
	for _, res := range r.Results {
		if res.Err != nil {
			if first == nil {
				first = res.Err
			}
			failed++
		}
	}
	if first == nil {
		return nil
	}
	return errors.Wrapf(first, "%d of %d items failed", failed, len(r.Results))
}

func opLogger(op string) zerolog.Logger {
	return logx.As().With().
		Str("op", op).
		Str("op_id", uuid.NewString()[:8]).
		Logger()
}

// CopyTo copies the collected files and directories under destDir, preserving
// each entry's relative name. Files already present at the destination with
// an identical MD5 checksum are left alone. It returns the collection of the
// successfully copied entries re-rooted at destDir, plus the per-item report.
func (p *Paths) CopyTo(ctx context.Context, destDir string) (*Paths, *Report) {
	destDir = normalizeDest(destDir)
	log := opLogger("copy")
	report := &Report{}
	copied := NewWithOptions(p.opts)

	for _, e := range p.entries {
		if ctx.Err() != nil {
			break
		}

		dest := path.Join(destDir, e.Name)
		if err := p.copyEntry(e, dest); err != nil {
			log.Error().Err(err).
				Str("src", e.Absolute()).
				Str("dest", dest).
				Msg("Failed to copy path")
			report.Add(e.Absolute(), dest, err)
			continue
		}

		report.Add(e.Absolute(), dest, nil)
		copied.entries = append(copied.entries, Entry{Root: destDir, Name: e.Name})
	}

	log.Info().
		Str("dest", destDir).
		Int("copied", copied.Len()).
		Int("total", p.Len()).
		Msg("Copy finished")

	return copied, report
}

func (p *Paths) copyEntry(e Entry, dest string) error {
	src := e.Absolute()
	info, ok := fsx.PathExists(p.fs, src)
	if !ok {
		return errors.Errorf("source does not exist: %s", src)
	}

	if info.IsDir() {
		return p.fs.MkdirAll(dest, 0o755)
	}

	if err := p.fs.MkdirAll(path.Dir(dest), 0o755); err != nil {
		return errors.Wrap(err, "create destination directory")
	}

	if _, ok := fsx.PathExists(p.fs, dest); ok {
		srcSum, serr := fsx.FileMD5(p.fs, src)
		destSum, derr := fsx.FileMD5(p.fs, dest)
		if serr == nil && derr == nil && srcSum == destSum {
			// Destination already holds identical content.
			return nil
		}
	}

	perm := info.Mode().Perm()
	if perm == 0 {
		perm = 0o644
	}
	return fsx.Copy(p.fs, src, dest, perm)
}

// Delete removes every collected path, deepest first: entries are explicitly
// sorted by segment depth and path length descending before any removal, so
// children always go before their parents. Directories are removed together
// with any contents they still hold.
func (p *Paths) Delete(ctx context.Context) *Report {
	ordered := make([]Entry, len(p.entries))
	copy(ordered, p.entries)
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i].Absolute(), ordered[j].Absolute()
		da, db := strings.Count(a, "/"), strings.Count(b, "/")
		if da != db {
			return da > db
		}
		return len(a) > len(b)
	})

	log := opLogger("delete")
	report := &Report{}
	for _, e := range ordered {
		if ctx.Err() != nil {
			break
		}

		abs := e.Absolute()
		var err error
		info, ok := fsx.PathExists(p.fs, abs)
		switch {
		case !ok:
			err = errors.Errorf("path does not exist: %s", abs)
		case info.IsDir():
			err = p.fs.RemoveAll(abs)
		default:
			err = p.fs.Remove(abs)
		}

		if err != nil {
			log.Error().Err(err).Str("path", abs).Msg("Failed to delete path")
		}
		report.Add(abs, "", err)
	}

	log.Info().Int("total", len(ordered)).Bool("failed", report.Failed()).Msg("Delete finished")
	return report
}

// Zip compresses the collected files into a new zip archive at destFile,
// storing each file under its relative name. Directory entries are skipped;
// when the collection holds no files, no archive is created at all. Entries
// that cannot be read are recorded in the report and left out of the archive.
func (p *Paths) Zip(ctx context.Context, destFile string) (*Report, error) {
	log := opLogger("zip")
	report := &Report{}

	files := p.FilesOnly()
	if files.Len() == 0 {
		log.Info().Str("dest", destFile).Msg("No files to archive")
		return report, nil
	}

	out, err := p.fs.Create(destFile)
	if err != nil {
		return report, errors.Wrap(err, "create archive")
	}
	defer fsx.CloseFile(out)

	zw := zip.NewWriter(out)
	// klauspost's flate is a drop-in replacement for the standard deflate.
	zw.RegisterCompressor(zip.Deflate, func(w io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(w, flate.BestSpeed)
	})

	for _, e := range files.entries {
		if err := ctx.Err(); err != nil {
			_ = zw.Close()
			return report, err
		}

		if err := p.zipEntry(zw, e); err != nil {
			log.Error().Err(err).Str("src", e.Absolute()).Msg("Failed to archive file")
			report.Add(e.Absolute(), destFile, err)
			continue
		}
		report.Add(e.Absolute(), destFile, nil)
	}

	if err := zw.Close(); err != nil {
		return report, errors.Wrap(err, "finalize archive")
	}

	log.Info().
		Str("dest", destFile).
		Int("archived", files.Len()).
		Bool("failed", report.Failed()).
		Msg("Zip finished")

	return report, nil
}

func (p *Paths) zipEntry(zw *zip.Writer, e Entry) error {
	src := e.Absolute()
	info, err := p.fs.Stat(src)
	if err != nil {
		return err
	}

	in, err := p.fs.Open(src)
	if err != nil {
		return err
	}
	defer fsx.CloseFile(in)

	hdr, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	hdr.Name = e.Name
	hdr.Method = zip.Deflate

	w, err := zw.CreateHeader(hdr)
	if err != nil {
		return err
	}

	_, err = io.Copy(w, in)
	return err
}

func normalizeDest(dir string) string {
	dir = strings.ReplaceAll(dir, "\\", "/")
	if len(dir) > 1 {
		dir = strings.TrimRight(dir, "/")
	}
	if dir == "" {
		return "."
	}
	return dir
}
