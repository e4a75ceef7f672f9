package ingest

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

// Table это разобранная таблица: строка заголовка и строки данных под ней.
type Table struct {
	Header []string
	Rows   [][]string
}

// Parse выбирает формат по расширению: .xlsx читается через excelize,
// остальное считается текстом с разделителями.
func Parse(name string, data []byte) (*Table, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%w: %w", ErrUnreadable, ErrEmptyFile)
	}

	if strings.EqualFold(filepath.Ext(name), ".xlsx") {
		return ParseXLSX(bytes.NewReader(data))
	}

	return ParseCSV(bytes.NewReader(data))
}

// ParseCSV читает текст с разделителем запятая или точка с запятой. Короткие
// строки дополняются, слишком длинные делают файл нечитаемым.
func ParseCSV(r io.Reader) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnreadable, err)
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%w: not UTF-8 text", ErrUnreadable)
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = sniffDelimiter(data)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: %w", ErrUnreadable, ErrEmptyFile)
		}
		return nil, fmt.Errorf("%w: %w", ErrUnreadable, err)
	}

	t := &Table{Header: header}
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrUnreadable, err)
		}
		if len(rec) > len(header) {
			line, _ := reader.FieldPos(0)
			return nil, fmt.Errorf("%w: line %d has %d fields, header has %d", ErrUnreadable, line, len(rec), len(header))
		}
		t.Rows = append(t.Rows, pad(rec, len(header)))
	}

	return t, nil
}

// ParseXLSX читает первый лист книги.
func ParseXLSX(r io.Reader) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnreadable, err)
	}
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("%w: workbook has no sheets", ErrUnreadable)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnreadable, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %w", ErrUnreadable, ErrEmptyFile)
	}

	header := rows[0]
	t := &Table{Header: header}
	for _, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		if len(row) > len(header) {
			row = row[:len(header)]
		}
		t.Rows = append(t.Rows, pad(row, len(header)))
	}

	return t, nil
}

// Columns сопоставляет каждому распознанному столбцу его индекс в заголовке.
func (t *Table) Columns() map[Column]int {
	idx := make(map[Column]int, len(t.Header))
	for i, h := range t.Header {
		if c, ok := lookup(h); ok {
			if _, seen := idx[c]; !seen {
				idx[c] = i
			}
		}
	}
	return idx
}

// Missing возвращает отсутствующие обязательные столбцы в порядке RequiredColumns.
func (t *Table) Missing() []Column {
	idx := t.Columns()
	var out []Column
	for _, c := range RequiredColumns {
		if _, ok := idx[c]; !ok {
			out = append(out, c)
		}
	}
	return out
}

// Validate проверяет набор обязательных столбцов.
func (t *Table) Validate() error {
	if missing := t.Missing(); len(missing) > 0 {
		return &MissingColumnsError{Columns: missing}
	}
	return nil
}

func sniffDelimiter(data []byte) rune {
	firstLine := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		firstLine = data[:i]
	}
	if bytes.Count(firstLine, []byte(";")) > bytes.Count(firstLine, []byte(",")) {
		return ';'
	}
	return ','
}

func pad(rec []string, n int) []string {
	if len(rec) >= n {
		return rec
	}
	out := make([]string, n)
	copy(out, rec)
	return out
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
