package google

import "testing"

func TestFindReportRow(t *testing.T) {
	values := [][]any{
		{"household_id", "year", "month"}, // header
		{"h1", "2026", "1"},
		{"h1", "2026", "2"},
		{"h2", "2026", "2"},
		{"h1", 2026.0, 3.0}, // numeric cells
		{"h1"},              // short row
	}

	tests := []struct {
		name        string
		householdID string
		year, month int
		want        int
	}{
		{"first data row", "h1", 2026, 1, 2},
		{"second data row", "h1", 2026, 2, 3},
		{"other household", "h2", 2026, 2, 4},
		{"numeric cells", "h1", 2026, 3, 5},
		{"no match", "h3", 2026, 1, 0},
		{"wrong year", "h1", 2025, 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := findReportRow(values, tt.householdID, tt.year, tt.month)
			if got != tt.want {
				t.Errorf("findReportRow() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCellInt(t *testing.T) {
	tests := []struct {
		in   any
		want int
		ok   bool
	}{
		{"12", 12, true},
		{" 12 ", 12, true},
		{"12.0", 12, true},
		{"12,5", 12, true},
		{2026.0, 2026, true},
		{"", 0, false},
		{"march", 0, false},
	}

	for _, tt := range tests {
		got, ok := cellInt(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("cellInt(%v) = (%d, %v), want (%d, %v)", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
