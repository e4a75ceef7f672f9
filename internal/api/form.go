package api

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/valyala/fasthttp"

	"github.com/Artexxx/HR-People-Analytics/internal/dto"
)

type formField struct {
	Name  string
	Label string
	Value string
	Error string
}

type personForm struct {
	Fields []formField
}

var personFields = []struct{ name, label string }{
	{"first_name", "Имя"},
	{"last_name", "Фамилия"},
	{"patronymic", "Отчество"},
	{"age", "Возраст"},
	{"gender", "Пол"},
	{"education", "Образование"},
	{"position", "Должность"},
	{"experience", "Стаж (лет)"},
	{"salary", "Зарплата"},
	{"phone", "Телефон"},
	{"address", "Адрес"},
}

func newPersonForm(values map[string]string, errs []dto.FieldError) personForm {
	byField := make(map[string]string, len(errs))
	for _, e := range errs {
		if _, seen := byField[e.Field]; !seen {
			byField[e.Field] = e.Message
		}
	}

	f := personForm{Fields: make([]formField, 0, len(personFields))}
	for _, pf := range personFields {
		f.Fields = append(f.Fields, formField{
			Name:  pf.name,
			Label: pf.label,
			Value: values[pf.name],
			Error: byField[pf.name],
		})
	}
	return f
}

// parsePersonForm читает форму добавления. Пустые числовые поля остаются незаданными.
func parsePersonForm(args *fasthttp.Args) (dto.Person, map[string]string, []dto.FieldError) {
	values := make(map[string]string, len(personFields))
	for _, pf := range personFields {
		values[pf.name] = strings.TrimSpace(string(args.Peek(pf.name)))
	}

	var errs []dto.FieldError
	p := dto.Person{
		FirstName:  values["first_name"],
		LastName:   values["last_name"],
		Patronymic: dto.NilIfEmpty(values["patronymic"]),
		Gender:     dto.NilIfEmpty(values["gender"]),
		Education:  dto.NilIfEmpty(values["education"]),
		Position:   dto.NilIfEmpty(values["position"]),
		Phone:      dto.NilIfEmpty(values["phone"]),
		Address:    dto.NilIfEmpty(values["address"]),
	}

	var err error
	if p.Age, err = parseOptInt(values["age"]); err != nil {
		errs = append(errs, dto.FieldError{Field: "age", Message: "must be a whole number"})
	}
	if p.Experience, err = parseOptInt(values["experience"]); err != nil {
		errs = append(errs, dto.FieldError{Field: "experience", Message: "must be a whole number"})
	}
	if p.Salary, err = parseOptFloat(values["salary"]); err != nil {
		errs = append(errs, dto.FieldError{Field: "salary", Message: "must be a number"})
	}

	return p, values, append(errs, dto.ValidatePerson(p)...)
}

func parseOptInt(s string) (dto.Opt[int], error) {
	if s == "" {
		return dto.None[int](), nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return dto.None[int](), err
	}
	return dto.Some(v), nil
}

func parseOptFloat(s string) (dto.Opt[float64], error) {
	if s == "" {
		return dto.None[float64](), nil
	}
	v, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	if err != nil {
		return dto.None[float64](), err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return dto.None[float64](), fmt.Errorf("not a finite number: %s", s)
	}
	return dto.Some(v), nil
}

// pageArg разбирает ?page=, при неположительном или нечисловом значении возвращает 1.
func pageArg(ctx *fasthttp.RequestCtx) int {
	page, err := ctx.QueryArgs().GetUint("page")
	if err != nil || page < 1 {
		return 1
	}
	return page
}
