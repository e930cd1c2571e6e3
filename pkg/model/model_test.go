package model

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestTendencyMagnitude(t *testing.T) {
	tests := []struct {
		amount float64
		want   float64
	}{
		{-4, 4},
		{2.5, 2.5},
		{0, 0},
	}
	for _, tt := range tests {
		if got := (Tendency{Amount: tt.amount}).Magnitude(); got != tt.want {
			t.Errorf("Magnitude(%v) = %v, want %v", tt.amount, got, tt.want)
		}
	}
}

func TestPathJSON_OmitsEmptyMetadata(t *testing.T) {
	p := Path{ID: 1, Metadata: EmptyMetadata}
	b, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	s := string(b)
	if strings.Contains(s, "bounds") || strings.Contains(s, "duration") {
		t.Errorf("empty metadata should omit bounds and duration: %s", s)
	}
	if !strings.Contains(s, `"point_count":0`) {
		t.Errorf("expected point_count in %s", s)
	}
}
