package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"trailgo/pkg/logging"
)

func TestFormatLogLine(t *testing.T) {
	input := `time=2026-01-18T06:50:46.074+01:00 level=INFO msg="Cleanup: done" readings_pruned="12 " job=Cleanup duration=1.2ms longparam=thisiswaytooLongtobedisplayed`
	expected := "06:50:46 Cleanup: done (duration=1.2ms, job=Cleanup, readings_pruned=12)"

	result := formatLogLine(input)
	if result != expected {
		t.Errorf("Expected '%s', got '%s'", expected, result)
	}
}

func TestFormatLogLine_Unstructured(t *testing.T) {
	if got := formatLogLine("plain text"); got != "plain text" {
		t.Errorf("expected passthrough, got %q", got)
	}
	if got := formatLogLine(""); got != "" {
		t.Errorf("expected empty, got %q", got)
	}
}

func TestHandleLatestLog(t *testing.T) {
	_, _ = logging.GlobalLogCapture.Write([]byte(`time=2026-01-18T06:50:46Z level=INFO msg="first"` + "\n"))
	_, _ = logging.GlobalLogCapture.Write([]byte(`time=2026-01-18T06:50:47Z level=INFO msg="second" path_id=4` + "\n"))

	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantLines  int
	}{
		{"Last line only", "", http.StatusOK, 0},
		{"With history", "?lines=2", http.StatusOK, 2},
		{"Bad lines", "?lines=zero", http.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/log/latest"+tt.query, http.NoBody)
			w := httptest.NewRecorder()
			handleLatestLog(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("StatusCode: got %v, want %v", w.Code, tt.wantStatus)
			}
			if tt.wantStatus != http.StatusOK {
				return
			}

			var resp struct {
				Log   string   `json:"log"`
				Lines []string `json:"lines"`
			}
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode JSON: %v", err)
			}
			if resp.Log != "06:50:47 second (path_id=4)" {
				t.Errorf("log = %q", resp.Log)
			}
			if len(resp.Lines) != tt.wantLines {
				t.Errorf("lines = %d, want %d", len(resp.Lines), tt.wantLines)
			}
			if tt.wantLines == 2 && resp.Lines[0] != "06:50:46 first" {
				t.Errorf("first line = %q", resp.Lines[0])
			}
		})
	}
}
