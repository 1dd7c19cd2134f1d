package instrumentation

import "testing"

func TestBoundedLabel(t *testing.T) {
	tests := []struct {
		value string
		want  string
	}{
		{StageMerged, StageMerged},
		{StageDropped, StageDropped},
		{"sheet-123", labelOther},
		{"", labelOther},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			if got := boundedLabel(tt.value, knownStages); got != tt.want {
				t.Errorf("boundedLabel(%q) = %q, want %q", tt.value, got, tt.want)
			}
		})
	}
}

func TestOperationConstants(t *testing.T) {
	for _, op := range []string{OperationList, OperationGet, OperationCreate, OperationDelete} {
		if !knownOperations[op] {
			t.Errorf("operation %q should be a known label", op)
		}
	}
}
