package pipeline

import (
	"fmt"
)

// SchemaError is a fatal schema-contract violation. The run halts
// immediately; no partial output is permitted. The error carries
// enough context (position, expected vs. actual) for an operator to
// fix the upstream data without reading engine internals.
type SchemaError struct {
	KitName  string
	Kind     string // COLUMN_COUNT, COLUMN_ORDER, REQUIRED_FIELD
	Position int    // column index, or row index for REQUIRED_FIELD
	Expected string
	Actual   string
}

func (e *SchemaError) Error() string {
	switch e.Kind {
	case "COLUMN_COUNT":
		return fmt.Sprintf("[%s] COLUMN COUNT MISMATCH: found %s, expected %s",
			e.KitName, e.Actual, e.Expected)
	case "COLUMN_ORDER":
		return fmt.Sprintf("[%s] COLUMN ORDER MISMATCH at position %d: found %q, expected %q",
			e.KitName, e.Position, e.Actual, e.Expected)
	case "REQUIRED_FIELD":
		return fmt.Sprintf("[%s] NULL/EMPTY value in required column %q at row %d",
			e.KitName, e.Expected, e.Position)
	}
	return fmt.Sprintf("[%s] schema violation: %s", e.KitName, e.Kind)
}

// ValidateSchema verifies a candidate table against the canonical
// contract: column count must match exactly, column i must equal
// Columns[i] for every i, and no required business field may be null
// or empty. Any violation is fatal and non-recoverable. On success the
// gate emits nothing; the table passes through untouched.
//
// The gate runs both as the pipeline entry check and as the final
// acceptance check after enrichment, and can be re-run against any
// kit's table independently.
func ValidateSchema(kitName string, t Table) error {
	if len(t.Header) != len(Columns) {
		return &SchemaError{
			KitName:  kitName,
			Kind:     "COLUMN_COUNT",
			Expected: fmt.Sprintf("%d", len(Columns)),
			Actual:   fmt.Sprintf("%d", len(t.Header)),
		}
	}

	for i, want := range Columns {
		if t.Header[i] != want {
			return &SchemaError{
				KitName:  kitName,
				Kind:     "COLUMN_ORDER",
				Position: i,
				Expected: want,
				Actual:   t.Header[i],
			}
		}
	}

	// Required business fields: every row must carry them.
	required := make(map[string]int, len(RequiredFields))
	for i, col := range Columns {
		for _, req := range RequiredFields {
			if col == req {
				required[req] = i
			}
		}
	}

	for rowIdx, rec := range t.Records {
		if len(rec) != len(Columns) {
			return &SchemaError{
				KitName:  kitName,
				Kind:     "COLUMN_COUNT",
				Position: rowIdx,
				Expected: fmt.Sprintf("%d", len(Columns)),
				Actual:   fmt.Sprintf("%d fields at row %d", len(rec), rowIdx),
			}
		}
		for _, req := range RequiredFields {
			if rec[required[req]] == "" {
				return &SchemaError{
					KitName:  kitName,
					Kind:     "REQUIRED_FIELD",
					Position: rowIdx,
					Expected: req,
				}
			}
		}
	}

	return nil
}

// Decode validates a table against the schema contract and, on
// success, decodes it into forecast rows. This is the whole-pipeline
// entry point; a SchemaError here halts the run before any stage.
func Decode(kitName string, t Table) ([]*ForecastRow, error) {
	if err := ValidateSchema(kitName, t); err != nil {
		return nil, err
	}
	rows := make([]*ForecastRow, 0, len(t.Records))
	for _, rec := range t.Records {
		row, err := RowFromRecord(rec)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}
