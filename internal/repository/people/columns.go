package people

import (
	"math"

	"github.com/Artexxx/HR-People-Analytics/internal/dto"
)

// PerPage размер страницы списка
const PerPage = 20

var columns = []string{
	"first_name", "last_name", "patronymic", "age", "gender", "education",
	"position", "experience", "salary", "phone", "address",
}

const selectColumns = `id, coalesce(first_name, ''), coalesce(last_name, ''), patronymic, age, gender, education, position, experience, salary, phone, address`

func scanTargets(p *dto.Person) []any {
	return []any{
		&p.ID, &p.FirstName, &p.LastName, &p.Patronymic, &p.Age, &p.Gender,
		&p.Education, &p.Position, &p.Experience, &p.Salary, &p.Phone, &p.Address,
	}
}

// offset возвращает false, если страница лежит за пределами адресуемых строк.
func offset(page, perPage int) (int, bool) {
	if page < 1 {
		page = 1
	}
	if perPage > 0 && page-1 > math.MaxInt/perPage {
		return 0, false
	}
	return (page - 1) * perPage, true
}
