package ingest

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/Artexxx/HR-People-Analytics/internal/dto"
)

var errNotWhole = errors.New("not a whole number")

// MapRows превращает каждую строку данных в запись. Пустые числовые ячейки
// остаются незаданными. Первая ячейка, которая не разбирается или выходит за
// допустимый диапазон, прерывает всё преобразование.
func (t *Table) MapRows() ([]dto.Person, error) {
	idx := t.Columns()
	out := make([]dto.Person, 0, len(t.Rows))

	for i, row := range t.Rows {
		m := rowMapper{row: row, idx: idx, n: i + 1}
		p := dto.Person{
			FirstName:  m.text(ColFirstName),
			LastName:   m.text(ColLastName),
			Patronymic: dto.NilIfEmpty(m.text(ColPatronymic)),
			Gender:     dto.NilIfEmpty(m.text(ColGender)),
			Education:  dto.NilIfEmpty(m.text(ColEducation)),
			Position:   dto.NilIfEmpty(m.text(ColPosition)),
			Phone:      dto.NilIfEmpty(m.text(ColPhone)),
			Address:    dto.NilIfEmpty(m.text(ColAddress)),
			Age:        m.whole(ColAge),
			Experience: m.whole(ColExperience),
			Salary:     m.decimal(ColSalary),
		}
		if m.err != nil {
			return nil, m.err
		}

		if errs := dto.CheckRanges(p); len(errs) > 0 {
			col := Column(errs[0].Field)
			return nil, &RowError{Row: m.n, Column: col, Value: m.raw(col), Err: errs[0]}
		}

		out = append(out, p)
	}

	return out, nil
}

type rowMapper struct {
	row []string
	idx map[Column]int
	n   int
	err error
}

func (m *rowMapper) raw(c Column) string {
	i, ok := m.idx[c]
	if !ok || i >= len(m.row) {
		return ""
	}
	return strings.TrimSpace(m.row[i])
}

func (m *rowMapper) text(c Column) string {
	v := m.raw(c)
	if isMissing(v) {
		return ""
	}
	return v
}

func (m *rowMapper) whole(c Column) dto.Opt[int] {
	v := m.raw(c)
	if m.err != nil || isMissing(v) {
		return dto.None[int]()
	}

	f, err := parseDecimal(v)
	if err == nil && f != math.Trunc(f) {
		err = errNotWhole
	}
	if err != nil {
		m.err = &RowError{Row: m.n, Column: c, Value: v, Err: err}
		return dto.None[int]()
	}

	return dto.Some(int(f))
}

func (m *rowMapper) decimal(c Column) dto.Opt[float64] {
	v := m.raw(c)
	if m.err != nil || isMissing(v) {
		return dto.None[float64]()
	}

	f, err := parseDecimal(v)
	if err != nil {
		m.err = &RowError{Row: m.n, Column: c, Value: v, Err: err}
		return dto.None[float64]()
	}

	return dto.Some(f)
}

// parseDecimal принимает "1234.5", "1234,5" и "1 234,5".
func parseDecimal(s string) (float64, error) {
	s = strings.NewReplacer(" ", "", "\u00a0", "").Replace(s)
	if !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, strconv.ErrSyntax
	}
	return f, nil
}

func isMissing(v string) bool {
	switch strings.ToLower(v) {
	case "", "nan", "null", "none", "n/a", "na":
		return true
	}
	return false
}
