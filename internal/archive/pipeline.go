// Package archive drives extraction and rewriting across a JAR container.
package archive

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path"
	"runtime"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"rejar/internal/report"
	"rejar/internal/rewrite"
	"rejar/internal/translate"
)

// IOError reports an unreadable or unwritable container. Fatal: the run
// aborts and no partial output is written.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("archive: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// Stats summarizes one pipeline run. Always reported, even when zero.
type Stats struct {
	FilesProcessed       int
	FilesModified        int
	TotalReplacements    int
	KeyBasedReplacements int
	FallbackReplacements int
}

// Pipeline processes JAR containers. Class entries go through
// decode -> analyze -> rewrite; everything else is copied untouched.
type Pipeline struct {
	Logger *zap.Logger
}

type entry struct {
	name  string
	isDir bool
	data  []byte
}

// readAll loads every archive entry into memory in input order. Processing is
// pure from here on; archive read and final write are the only I/O
// boundaries.
func readAll(jarPath string) ([]entry, error) {
	zr, err := zip.OpenReader(jarPath)
	if err != nil {
		return nil, &IOError{Op: "open", Path: jarPath, Err: err}
	}
	defer zr.Close()

	entries := make([]entry, 0, len(zr.File))
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			entries = append(entries, entry{name: f.Name, isDir: true})
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, &IOError{Op: "read", Path: f.Name, Err: err}
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, &IOError{Op: "read", Path: f.Name, Err: err}
		}
		entries = append(entries, entry{name: f.Name, data: data})
	}
	return entries, nil
}

func isClass(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".class")
}

// Extract walks every entry and produces the extraction report: class-file
// strings with contexts and keys, plus non-class text resources classified by
// extension. Class entries decode in parallel; a class that fails to decode
// is logged and skipped, never aborting the run.
func (p *Pipeline) Extract(jarPath string) (*report.Document, Stats, error) {
	entries, err := readAll(jarPath)
	if err != nil {
		return nil, Stats{}, err
	}

	doc := report.NewDocument()
	var stats Stats

	results := make([][]report.ClassString, len(entries))
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i := range entries {
		e := &entries[i]
		if e.isDir || !isClass(e.name) {
			continue
		}
		idx := i
		g.Go(func() error {
			strs, err := rewrite.ExtractClass(e.name, e.data)
			if err != nil {
				p.Logger.Warn("skipping undecodable class",
					zap.String("entry", e.name), zap.Error(err))
				return nil
			}
			results[idx] = strs
			return nil
		})
	}
	_ = g.Wait() // workers never fail the group

	for i, e := range entries {
		if e.isDir {
			continue
		}
		switch {
		case isClass(e.name):
			stats.FilesProcessed++
			if len(results[i]) > 0 {
				doc.ClassStrings[e.name] = results[i]
			}
		default:
			classifyResource(doc, e.name, e.data)
		}
	}
	return doc, stats, nil
}

func classifyResource(doc *report.Document, name string, data []byte) {
	switch strings.ToLower(path.Ext(name)) {
	case ".properties":
		doc.AddProperties(name, data)
	case ".json":
		doc.AddJSON(name, data)
	case ".txt", ".xml", ".cfg", ".ini":
		doc.AddText(name, data)
	}
}

// Translate rewrites matched strings across all class entries and repacks the
// archive. Per-entry decode or encode failures leave that entry byte-identical
// and are logged; only container-level I/O aborts the run. The output file is
// materialized only after the full archive serialized cleanly.
func (p *Pipeline) Translate(jarPath, outPath string, store *translate.Store) (Stats, error) {
	entries, err := readAll(jarPath)
	if err != nil {
		return Stats{}, err
	}

	var stats Stats
	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i := range entries {
		e := &entries[i]
		if e.isDir || !isClass(e.name) {
			continue
		}
		g.Go(func() error {
			out, res, err := rewrite.RewriteClass(e.name, e.data, store)
			mu.Lock()
			defer mu.Unlock()
			stats.FilesProcessed++
			if err != nil {
				p.Logger.Warn("leaving class entry untouched",
					zap.String("entry", e.name), zap.Error(err))
				return nil
			}
			if res.Replacements > 0 {
				e.data = out
				stats.FilesModified++
				stats.TotalReplacements += res.Replacements
				stats.KeyBasedReplacements += res.KeyBased
				stats.FallbackReplacements += res.Fallback
			}
			return nil
		})
	}
	_ = g.Wait()

	packed, err := pack(entries)
	if err != nil {
		return stats, &IOError{Op: "pack", Path: outPath, Err: err}
	}
	if err := os.WriteFile(outPath, packed, 0644); err != nil {
		return stats, &IOError{Op: "write", Path: outPath, Err: err}
	}
	return stats, nil
}

// pack re-serializes entries into a deflate-compressed archive in memory.
func pack(entries []entry) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		if e.isDir {
			if _, err := zw.Create(e.name); err != nil {
				return nil, err
			}
			continue
		}
		w, err := zw.CreateHeader(&zip.FileHeader{Name: e.name, Method: zip.Deflate})
		if err != nil {
			return nil, err
		}
		if _, err := w.Write(e.data); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
