package parse

import "testing"

// TestPrescriptionSetCount verifies set-count extraction from prescription
// strings. A rep-range without a set count declares nothing.
func TestPrescriptionSetCount(t *testing.T) {
	tests := []struct {
		prescription string
		want         int
	}{
		{"3x8", 3},
		{"3x8-10", 3},
		{"4 x 12", 4},
		{"5×5", 5},
		{"2x15", 2},
		{"3 sets", 3},
		{"3 sets of 10", 3},
		{"6-8 reps", 0},
		{"5 reps", 0},
		{"AMRAP", 0},
		{"", 0},
		{"   ", 0},
	}
	for _, tt := range tests {
		if got := prescriptionSetCount(tt.prescription); got != tt.want {
			t.Errorf("prescriptionSetCount(%q) = %d, want %d", tt.prescription, got, tt.want)
		}
	}
}

// TestLabelSetCount verifies group set-count extraction from block labels.
func TestLabelSetCount(t *testing.T) {
	tests := []struct {
		label string
		want  int
	}{
		{"Superset A (4 sets)", 4},
		{"Giant set, 3 sets", 3},
		{"1 set burnout", 1},
		{"Superset A", 0},
		{"Lower Body", 0},
		{"", 0},
	}
	for _, tt := range tests {
		if got := labelSetCount(tt.label); got != tt.want {
			t.Errorf("labelSetCount(%q) = %d, want %d", tt.label, got, tt.want)
		}
	}
}
