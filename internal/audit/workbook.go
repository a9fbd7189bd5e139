package audit

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// maxSheetName is the sheet name limit imposed by spreadsheet applications.
const maxSheetName = 31

// WriteWorkbook stores every journal sink as a sheet of one xlsx file.
func WriteWorkbook(path string, j *Journal) error {
	f := excelize.NewFile()
	defer f.Close()

	names := j.Names()
	if len(names) == 0 {
		names = []string{"audit"}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	for i, name := range names {
		sheet := sheetName(name)
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet); err != nil {
				return fmt.Errorf("failed to rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("failed to add sheet %s: %w", sheet, err)
		}

		header := j.Header(name)
		if err := setRow(f, sheet, 1, header); err != nil {
			return err
		}
		if len(header) > 0 {
			last, _ := excelize.CoordinatesToCellName(len(header), 1)
			if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
				return fmt.Errorf("failed to style header of %s: %w", sheet, err)
			}
		}
		for r, record := range j.Records(name) {
			if err := setRow(f, sheet, r+2, record); err != nil {
				return err
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save audit workbook %s: %w", path, err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
		return fmt.Errorf("failed to write row %d of %s: %w", row, sheet, err)
	}
	return nil
}

func sheetName(name string) string {
	if len(name) > maxSheetName {
		return name[:maxSheetName]
	}
	return name
}
