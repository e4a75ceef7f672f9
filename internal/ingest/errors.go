package ingest

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnreadable: вход не удалось разобрать как таблицу.
	ErrUnreadable = errors.New("unreadable tabular file: invalid format")
	ErrTooLarge   = errors.New("uploaded file exceeds the size limit")
	ErrEmptyFile  = errors.New("uploaded file is empty")
	ErrStorage    = errors.New("failed to store imported records")
)

// MissingColumnsError перечисляет обязательные столбцы, которых нет в заголовке.
type MissingColumnsError struct {
	Columns []Column
}

func (e *MissingColumnsError) Error() string {
	names := make([]string, 0, len(e.Columns))
	for _, c := range e.Columns {
		names = append(names, fmt.Sprintf("%s (%s)", c.Label(), c))
	}
	return "missing required columns: " + strings.Join(names, ", ")
}

// RowError сообщает о ячейке, которую не удалось перенести в поле записи.
// Row считается с 1 и только по строкам данных.
type RowError struct {
	Row    int
	Column Column
	Value  string
	Err    error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d, column %s: invalid value %q: %v", e.Row, e.Column.Label(), e.Value, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}
