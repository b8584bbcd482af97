package export

import (
	"testing"
	"time"

	"github.com/student-records/apiserver/types"
	"github.com/xuri/excelize/v2"
)

func TestRenderStudents(t *testing.T) {
	created := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	students := []types.Student{
		{
			ID: "65a1f0c2e4b0a1b2c3d4e5f6", Name: "Ada", Email: "ada@example.com",
			Grade: 5, Age: 10, Address: "1 Main St", Role: types.RoleStudent,
			CreatedAt: created, UpdatedAt: created,
		},
		{
			ID: "65a1f0c2e4b0a1b2c3d4e5f7", Name: "Bob", Email: "bob@example.com",
			Grade: 12, Age: 17, Address: "2 Main St", Description: "captain",
			CreatedAt: created, UpdatedAt: created.Add(time.Hour),
		},
	}

	buf, err := Render(students)
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	if err != nil {
		t.Fatalf("get rows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header and 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "ID" || rows[0][9] != "Updated At" {
		t.Fatalf("unexpected header %v", rows[0])
	}
	if rows[1][1] != "Ada" || rows[1][3] != "5" || rows[1][7] != "student" {
		t.Fatalf("unexpected first row %v", rows[1])
	}
	if rows[2][6] != "captain" || rows[2][9] != "2024-03-01T10:30:00Z" {
		t.Fatalf("unexpected second row %v", rows[2])
	}
}

func TestRenderEmpty(t *testing.T) {
	buf, err := Render(nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	if err != nil {
		t.Fatalf("get rows: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected only the header row, got %d", len(rows))
	}
}

func TestObjectKey(t *testing.T) {
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.FixedZone("X", 3600))
	if got := ObjectKey(at); got != "exports/students_20240102T020405Z.xlsx" {
		t.Fatalf("got %q", got)
	}
}

func TestColName(t *testing.T) {
	for n, want := range map[int]string{1: "A", 10: "J", 26: "Z", 27: "AA"} {
		if got := colName(n); got != want {
			t.Fatalf("colName(%d) = %q, want %q", n, got, want)
		}
	}
}
