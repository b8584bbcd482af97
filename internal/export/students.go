// Package export renders student records as spreadsheets.
package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/student-records/apiserver/types"
	"github.com/xuri/excelize/v2"
)

const (
	SheetName   = "Students"
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var header = []string{
	"ID", "Name", "Email", "Grade", "Age", "Address", "Description", "Role", "Created At", "Updated At",
}

// StudentsWorkbook builds a single-sheet workbook with one row per student
// and a bold, filterable header row.
func StudentsWorkbook(students []types.Student) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	for col, h := range header {
		cell := fmt.Sprintf("%s1", colName(col+1))
		if err := f.SetCellStr(SheetName, cell, h); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("set cell %s: %w", cell, err)
		}
	}
	end := colName(len(header)) + "1"
	if bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		_ = f.SetCellStyle(SheetName, "A1", end, bold)
	}
	_ = f.AutoFilter(SheetName, "A1:"+end, nil)

	for i, s := range students {
		row := []any{
			s.ID,
			s.Name,
			s.Email,
			s.Grade,
			s.Age,
			s.Address,
			s.Description,
			string(s.Role),
			s.CreatedAt.UTC().Format(time.RFC3339),
			s.UpdatedAt.UTC().Format(time.RFC3339),
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("set row %s: %w", cell, err)
		}
	}

	for c, h := range header {
		width := float64(len(h)) * 1.2
		if width < 12 {
			width = 12
		}
		_ = f.SetColWidth(SheetName, colName(c+1), colName(c+1), width)
	}
	return f, nil
}

// Render returns the xlsx encoding of the students workbook.
func Render(students []types.Student) (*bytes.Buffer, error) {
	f, err := StudentsWorkbook(students)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf, nil
}

// ObjectKey names an export taken at t.
func ObjectKey(t time.Time) string {
	return fmt.Sprintf("exports/students_%s.xlsx", t.UTC().Format("20060102T150405Z"))
}

func colName(n int) string {
	s := ""
	for n > 0 {
		n--
		s = string(rune('A'+(n%26))) + s
		n /= 26
	}
	return s
}
