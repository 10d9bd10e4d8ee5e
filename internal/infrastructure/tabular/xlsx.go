package tabular

import (
	"io"

	"github.com/rotisserie/eris"
	"github.com/xuri/excelize/v2"
)

type xlsxReader struct {
	file *excelize.File
	rows *excelize.Rows
	line int
}

func openXLSX(path, sheet string) (*xlsxReader, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			f.Close()
			return nil, eris.New("workbook has no sheets")
		}
		sheet = sheets[0]
	}

	rows, err := f.Rows(sheet)
	if err != nil {
		f.Close()
		return nil, eris.Wrapf(err, "sheet %q", sheet)
	}

	return &xlsxReader{file: f, rows: rows}, nil
}

func (x *xlsxReader) next() ([]string, int, error) {
	for x.rows.Next() {
		x.line++
		cols, err := x.rows.Columns()
		if err != nil {
			return nil, 0, err
		}
		// rows with no cells at all are blank lines, skipped like blank CSV lines
		if len(cols) == 0 {
			continue
		}
		return cols, x.line, nil
	}
	if err := x.rows.Error(); err != nil {
		return nil, 0, err
	}
	return nil, 0, io.EOF
}

func (x *xlsxReader) close() error {
	if err := x.rows.Close(); err != nil {
		x.file.Close()
		return err
	}
	return x.file.Close()
}
