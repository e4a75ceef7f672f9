package api

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/Artexxx/HR-People-Analytics/internal/dto"
	"github.com/Artexxx/HR-People-Analytics/internal/ingest"
)

var exportColumns = []ingest.Column{
	ingest.ColLastName,
	ingest.ColFirstName,
	ingest.ColPatronymic,
	ingest.ColAge,
	ingest.ColGender,
	ingest.ColEducation,
	ingest.ColPosition,
	ingest.ColExperience,
	ingest.ColSalary,
	ingest.ColPhone,
	ingest.ColAddress,
}

// peopleWorkbook выгружает записи с теми же заголовками столбцов, что принимает
// импорт, поэтому выгрузку можно загрузить обратно.
func peopleWorkbook(all []dto.Person) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	header := make([]any, 0, len(exportColumns))
	for _, c := range exportColumns {
		header = append(header, c.Label())
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("excelize.SetSheetRow: %w", err)
	}

	for i, p := range all {
		row := []any{
			p.LastName,
			p.FirstName,
			dto.Deref(p.Patronymic),
			p.Age.Any(),
			dto.Deref(p.Gender),
			dto.Deref(p.Education),
			dto.Deref(p.Position),
			p.Experience.Any(),
			p.Salary.Any(),
			dto.Deref(p.Phone),
			dto.Deref(p.Address),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("excelize.CoordinatesToCellName: %w", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, fmt.Errorf("excelize.SetSheetRow: %w", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("excelize.WriteToBuffer: %w", err)
	}

	return buf.Bytes(), nil
}
