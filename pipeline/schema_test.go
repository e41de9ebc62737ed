package pipeline

import (
	"errors"
	"testing"
)

func validTable(records int) Table {
	t := Table{Header: append([]string(nil), Columns...)}
	for i := 0; i < records; i++ {
		row := &ForecastRow{
			KitName:  "KIT_TEST",
			Game:     "Cash3",
			DrawDate: "2026-08-01",
			DrawTime: "EVENING",
			Number:   "123",
		}
		t.Records = append(t.Records, row.Record())
	}
	return t
}

func TestValidateSchemaAccepts(t *testing.T) {
	if err := ValidateSchema("KIT_TEST", validTable(3)); err != nil {
		t.Fatalf("expected valid table to pass, got %v", err)
	}
}

func TestValidateSchemaColumnCount(t *testing.T) {
	tbl := validTable(1)
	tbl.Header = tbl.Header[:len(tbl.Header)-1] // drop last column

	err := ValidateSchema("KIT_TEST", tbl)
	var se *SchemaError
	if !errors.As(err, &se) {
		t.Fatalf("expected SchemaError, got %v", err)
	}
	if se.Kind != "COLUMN_COUNT" {
		t.Errorf("expected COLUMN_COUNT, got %s", se.Kind)
	}
}

func TestValidateSchemaColumnSwap(t *testing.T) {
	tbl := validTable(1)
	// swap two adjacent columns
	tbl.Header[1], tbl.Header[2] = tbl.Header[2], tbl.Header[1]

	err := ValidateSchema("KIT_TEST", tbl)
	var se *SchemaError
	if !errors.As(err, &se) {
		t.Fatalf("expected SchemaError, got %v", err)
	}
	if se.Kind != "COLUMN_ORDER" {
		t.Errorf("expected COLUMN_ORDER, got %s", se.Kind)
	}
	// the first mismatching index must be reported
	if se.Position != 1 {
		t.Errorf("expected mismatch at position 1, got %d", se.Position)
	}
	if se.Expected != Columns[1] || se.Actual != Columns[2] {
		t.Errorf("expected %q vs %q, got %q vs %q", Columns[1], Columns[2], se.Expected, se.Actual)
	}
}

func TestValidateSchemaRequiredFields(t *testing.T) {
	tests := []struct {
		name  string
		field string
		col   int
	}{
		{"empty kit_name", "kit_name", 0},
		{"empty game", "game", 1},
		{"empty draw_date", "draw_date", 2},
		{"empty number", "number", 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := validTable(3)
			tbl.Records[2][tt.col] = ""

			err := ValidateSchema("KIT_TEST", tbl)
			var se *SchemaError
			if !errors.As(err, &se) {
				t.Fatalf("expected SchemaError, got %v", err)
			}
			if se.Kind != "REQUIRED_FIELD" {
				t.Errorf("expected REQUIRED_FIELD, got %s", se.Kind)
			}
			if se.Position != 2 {
				t.Errorf("expected offending row 2, got %d", se.Position)
			}
			if se.Expected != tt.field {
				t.Errorf("expected field %q, got %q", tt.field, se.Expected)
			}
		})
	}
}

func TestDecodeRoundTrip(t *testing.T) {
	tbl := validTable(2)
	rows, err := Decode("KIT_TEST", tbl)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}

	out := Encode(rows)
	if err := ValidateSchema("KIT_TEST", out); err != nil {
		t.Fatalf("re-encoded table failed schema gate: %v", err)
	}
	for i := range tbl.Records {
		for j := range tbl.Records[i] {
			if tbl.Records[i][j] != out.Records[i][j] {
				t.Errorf("round trip drift at row %d col %d: %q != %q",
					i, j, tbl.Records[i][j], out.Records[i][j])
			}
		}
	}
}
