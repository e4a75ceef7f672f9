package ingest

import (
	"strings"
)

// Column это каноническое имя поля сотрудника во входной таблице.
type Column string

const (
	ColFirstName  Column = "first_name"
	ColLastName   Column = "last_name"
	ColPatronymic Column = "patronymic"
	ColAge        Column = "age"
	ColGender     Column = "gender"
	ColEducation  Column = "education"
	ColPosition   Column = "position"
	ColExperience Column = "experience"
	ColSalary     Column = "salary"
	ColPhone      Column = "phone"
	ColAddress    Column = "address"
)

// RequiredColumns обязательны в строке заголовка.
var RequiredColumns = []Column{ColFirstName, ColLastName, ColPosition, ColExperience, ColSalary}

var labels = map[Column]string{
	ColFirstName:  "Имя",
	ColLastName:   "Фамилия",
	ColPatronymic: "Отчество",
	ColAge:        "Возраст",
	ColGender:     "Пол",
	ColEducation:  "Уровень образования",
	ColPosition:   "Должность",
	ColExperience: "Стаж (лет)",
	ColSalary:     "Зарплата",
	ColPhone:      "Телефон",
	ColAddress:    "Адрес",
}

// Label это заголовок столбца в выгрузках отдела кадров.
func (c Column) Label() string {
	if l, ok := labels[c]; ok {
		return l
	}
	return string(c)
}

var aliases = func() map[string]Column {
	m := make(map[string]Column, len(labels)*2)
	for col, label := range labels {
		m[normalizeHeader(label)] = col
		m[normalizeHeader(string(col))] = col
	}
	return m
}()

func normalizeHeader(h string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
}

// lookup сопоставляет ячейку заголовка столбцу.
func lookup(header string) (Column, bool) {
	c, ok := aliases[normalizeHeader(header)]
	return c, ok
}
