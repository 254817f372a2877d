package models

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestNewCandidateRecordDefaults(t *testing.T) {
	rec := NewCandidateRecord()

	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("Failed to marshal CandidateRecord: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Failed to unmarshal CandidateRecord: %v", err)
	}

	for _, key := range []string{"personal_data", "education", "experience", "project_data"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("Expected key %s to be present", key)
		}
	}

	if edu, ok := decoded["education"].([]interface{}); !ok || len(edu) != 0 {
		t.Errorf("Expected education to be an empty array, got %v", decoded["education"])
	}

	personal := decoded["personal_data"].(map[string]interface{})
	if personal["age"] != nil {
		t.Errorf("Expected age to be null, got %v", personal["age"])
	}
	if _, ok := personal["languages"].(map[string]interface{}); !ok {
		t.Errorf("Expected languages to be an object, got %v", personal["languages"])
	}
}

func TestReportConfigAny(t *testing.T) {
	tests := []struct {
		name string
		cfg  ReportConfig
		want bool
	}{
		{name: "All enabled", cfg: DefaultReportConfig(), want: true},
		{name: "Only education", cfg: ReportConfig{IncludeEducation: true}, want: true},
		{name: "Nothing selected", cfg: ReportConfig{}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.Any(); got != tt.want {
				t.Errorf("Any() = %v, want %v", got, tt.want)
			}
			err := tt.cfg.Validate()
			if tt.want && err != nil {
				t.Errorf("Validate() returned unexpected error: %v", err)
			}
			if !tt.want && !errors.Is(err, ErrNothingSelected) {
				t.Errorf("Validate() = %v, want ErrNothingSelected", err)
			}
		})
	}
}
