package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// processedDir is the inbox subdirectory for files already ingested.
const processedDir = "processed"

// FileInfo describes a file waiting in the inbox.
type FileInfo struct {
	Name   string
	Path   string
	Size   int64
	Format string
}

// Scan returns the files in dir that a registered format can read.
func Scan(dir string) ([]FileInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading inbox: %w", err)
	}

	var files []FileInfo
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		format := FormatFor(filepath.Join(dir, e.Name()))
		if format == "" {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		files = append(files, FileInfo{
			Name:   e.Name(),
			Path:   filepath.Join(dir, e.Name()),
			Size:   info.Size(),
			Format: format,
		})
	}
	return files, nil
}

// ParseFiles parses files concurrently and returns their documents in the
// order given. The first failure cancels the rest.
func ParseFiles(ctx context.Context, reg *Registry, files []FileInfo) ([]Document, error) {
	docs := make([]Document, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, f := range files {
		i, f := i, f
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			p := reg.Get(f.Format)
			if p == nil {
				return fmt.Errorf("%s: no parser for format %q", f.Name, f.Format)
			}
			fh, err := os.Open(f.Path)
			if err != nil {
				return fmt.Errorf("opening %s: %w", f.Name, err)
			}
			defer fh.Close()

			doc, err := p.Parse(fh)
			if err != nil {
				return fmt.Errorf("%s: %w", f.Name, err)
			}
			doc.Source = f.Name
			docs[i] = doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return docs, nil
}

// MarkProcessed moves a file from the inbox to its processed/ subdirectory.
func MarkProcessed(dir, fileName string) error {
	dstDir := filepath.Join(dir, processedDir)
	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return fmt.Errorf("creating processed dir: %w", err)
	}

	src := filepath.Join(dir, fileName)
	dst := filepath.Join(dstDir, fileName)
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("moving %s to processed: %w", fileName, err)
	}
	return nil
}
