package dto

// Person запись о сотруднике. Необязательные текстовые поля равны nil,
// необязательные числовые хранятся в Opt.
type Person struct {
	ID         int64        `json:"id"`
	FirstName  string       `json:"first_name"`
	LastName   string       `json:"last_name"`
	Patronymic *string      `json:"patronymic"`
	Age        Opt[int]     `json:"age"`
	Gender     *string      `json:"gender"`
	Education  *string      `json:"education"`
	Position   *string      `json:"position"`
	Experience Opt[int]     `json:"experience"`
	Salary     Opt[float64] `json:"salary"`
	Phone      *string      `json:"phone"`
	Address    *string      `json:"address"`
}

// Page страница списка, упорядоченного по id
type Page struct {
	Items   []Person `json:"items"`
	Page    int      `json:"page"`
	PerPage int      `json:"per_page"`
	Total   int      `json:"total"`
	Pages   int      `json:"pages"`
	HasPrev bool     `json:"has_prev"`
	HasNext bool     `json:"has_next"`
}

// NewPage заполняет производные поля пагинации.
func NewPage(items []Person, page, perPage, total int) Page {
	pages := 0
	if perPage > 0 {
		pages = (total + perPage - 1) / perPage
	}
	if items == nil {
		items = []Person{}
	}
	return Page{
		Items:   items,
		Page:    page,
		PerPage: perPage,
		Total:   total,
		Pages:   pages,
		HasPrev: page > 1,
		HasNext: page < pages,
	}
}

func StrPtr(s string) *string {
	return &s
}

// NilIfEmpty превращает "" в пустое текстовое поле.
func NilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func Deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
