package tabular

import (
	"encoding/csv"
	"errors"
	"io"
	"os"
)

type csvReader struct {
	file   *os.File
	reader *csv.Reader
}

func openCSV(path string) (*csvReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // rows carry a variable number of images

	return &csvReader{file: f, reader: r}, nil
}

func (c *csvReader) next() ([]string, int, error) {
	record, err := c.reader.Read()
	if err == io.EOF {
		return nil, 0, io.EOF
	}

	var parseErr *csv.ParseError
	if errors.As(err, &parseErr) {
		return nil, parseErr.StartLine, nil
	}
	if err != nil {
		return nil, 0, err
	}

	line, _ := c.reader.FieldPos(0)
	return record, line, nil
}

func (c *csvReader) close() error {
	return c.file.Close()
}
