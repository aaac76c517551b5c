package analysis

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"unicode/utf8"
)

// DefaultDelimiter separates fields in both input tables and written reports.
const DefaultDelimiter = ';'

// Table is a column-oriented view of a delimited file.
type Table struct {
	// Header lists column names in file order.
	Header []string
	// Columns maps a column name to its values in row order.
	// When a name repeats in the header, the rightmost column wins.
	Columns map[string][]string
	// Rows counts data records (header excluded).
	Rows int
}

// Column returns the values for name and whether the column exists.
func (t *Table) Column(name string) ([]string, bool) {
	if t == nil {
		return nil, false
	}
	v, ok := t.Columns[name]
	return v, ok
}

// LoadTable reads a delimited file whose first record names the columns.
// Every data record must have as many fields as the header; the first one
// that does not yields a *MalformedTableError.
func LoadTable(path string, delim rune) (*Table, error) {
	if delim == 0 {
		delim = DefaultDelimiter
	}
	if !validDelimiter(delim) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDelimiter, delim)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, &FileAccessError{Path: path, Op: "open", Err: err}
	}
	defer f.Close()
	t, err := readTable(f, delim)
	if err != nil {
		return nil, tableError(path, err)
	}
	return t, nil
}

// tableError maps a read failure onto the error taxonomy: csv syntax problems
// become *MalformedTableError, everything else is a read failure.
func tableError(path string, err error) error {
	var mt *MalformedTableError
	if errors.As(err, &mt) {
		mt.Path = path
		return mt
	}
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return &MalformedTableError{Path: path, Line: pe.Line, Err: pe.Err}
	}
	return &FileAccessError{Path: path, Op: "read", Err: err}
}

func validDelimiter(r rune) bool {
	return r != '"' && r != '\r' && r != '\n' && r != utf8.RuneError && utf8.ValidRune(r)
}

func readTable(in io.Reader, delim rune) (*Table, error) {
	r := csv.NewReader(in)
	r.Comma = delim
	r.LazyQuotes = true
	r.FieldsPerRecord = -1

	t := &Table{Columns: map[string][]string{}}
	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return t, nil
		}
		return nil, err
	}
	t.Header = header
	ncol := len(header)
	// index -> destination slot; duplicates resolve to the last occurrence
	cols := make([][]string, ncol)

	for {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}
		if len(rec) != ncol {
			line, _ := r.FieldPos(0)
			return nil, &MalformedTableError{Line: line, Want: ncol, Got: len(rec)}
		}
		for i, v := range rec {
			cols[i] = append(cols[i], v)
		}
		t.Rows++
	}
	for i, name := range header {
		vals := cols[i]
		if vals == nil {
			vals = []string{}
		}
		t.Columns[name] = vals
	}
	return t, nil
}
