// Package tabular reads product rows of label image references from CSV and
// XLSX files.
package tabular

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/laxmi8801/data-extractor/internal/domain"
)

// Options configures how an input file is read.
type Options struct {
	HasHeader bool   // skip the first line
	Sheet     string // XLSX sheet name; first sheet when empty
}

// rowReader yields the raw cells of one line at a time. A line that cannot be
// parsed is returned as nil cells with a nil error; io.EOF ends the stream.
type rowReader interface {
	next() (cells []string, line int, err error)
	close() error
}

// Source streams product rows from a tabular file. It is single pass.
type Source struct {
	path   string
	opts   Options
	reader rowReader
}

// Open opens path as XLSX when it has an .xlsx extension and as CSV otherwise.
// Failures wrap domain.ErrInputUnreadable.
func Open(path string, opts Options) (*Source, error) {
	if path == "" {
		return nil, eris.Wrap(domain.ErrInputUnreadable, "no input path given")
	}

	var (
		reader rowReader
		err    error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		reader, err = openXLSX(path, opts.Sheet)
	default:
		reader, err = openCSV(path)
	}
	if err != nil {
		return nil, eris.Wrapf(domain.ErrInputUnreadable, "open %s: %v", path, err)
	}

	return &Source{path: path, opts: opts, reader: reader}, nil
}

// Rows streams one ProductRow per non-header line. Empty cells are dropped;
// a line with no usable cells, or one that fails to parse, still yields a
// row with no images. The error channel receives at most one error.
func (s *Source) Rows(ctx context.Context) (<-chan domain.ProductRow, <-chan error) {
	rowCh := make(chan domain.ProductRow)
	errCh := make(chan error, 1)

	go func() {
		defer close(rowCh)
		defer close(errCh)

		first := true
		for {
			if ctx.Err() != nil {
				errCh <- eris.Wrap(ctx.Err(), "tabular: context cancelled")
				return
			}

			cells, line, err := s.reader.next()
			if err == io.EOF {
				return
			}
			if err != nil {
				errCh <- eris.Wrapf(domain.ErrInputUnreadable, "read %s: %v", s.path, err)
				return
			}

			if first && s.opts.HasHeader {
				first = false
				continue
			}
			first = false

			row := domain.ProductRow{Line: line, Images: filterCells(cells)}
			select {
			case rowCh <- row:
			case <-ctx.Done():
				errCh <- eris.Wrap(ctx.Err(), "tabular: context cancelled")
				return
			}
		}
	}()

	return rowCh, errCh
}

// Close releases the underlying file.
func (s *Source) Close() error {
	return s.reader.close()
}

// filterCells trims every cell and drops the empty ones, keeping order.
func filterCells(cells []string) []string {
	images := make([]string, 0, len(cells))
	for _, cell := range cells {
		cell = strings.TrimSpace(cell)
		if cell == "" {
			continue
		}
		images = append(images, cell)
	}
	return images
}
