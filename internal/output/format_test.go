package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    Format
		wantErr bool
	}{
		{"yaml", FormatYAML, false},
		{"YAML", FormatYAML, false},
		{"yml", FormatYAML, false},
		{"", FormatYAML, false},
		{" json ", FormatJSON, false},
		{"cgf", "", true},
		{"xml", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestWriteUnsupported(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, Format("xml"), struct{}{}); err == nil {
		t.Error("Write should return error for unsupported format")
	}
}

func TestYAMLRunOutput(t *testing.T) {
	out := &RunOutput{
		Path:      "src",
		Mode:      "code",
		Processed: 2,
		Failed:    1,
		Duration:  "1.2s",
		Files: []FileResult{
			{Path: "src/a.py", Status: "processed", ContextID: "ctx-1"},
			{Path: "src/b.py", Status: "failed", Error: "boom"},
		},
	}

	var buf bytes.Buffer
	if err := Write(&buf, FormatYAML, out); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	s := buf.String()

	if !strings.Contains(s, "context_id: ctx-1") {
		t.Errorf("expected context id in output:\n%s", s)
	}
	if strings.Contains(s, "dry_run") {
		t.Errorf("dry_run should be omitted when false:\n%s", s)
	}

	var back RunOutput
	if err := yaml.Unmarshal([]byte(s), &back); err != nil {
		t.Fatalf("output is not valid yaml: %v", err)
	}
	if back.Files[1].Error != "boom" {
		t.Errorf("unexpected decoded files %+v", back.Files)
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	out := &DiscoverOutput{
		File:     "a.py",
		Language: "PYTHON",
		Depth:    1,
		Contexts: []DiscoveredContext{{Path: "b.py", Language: "PYTHON", Bytes: 12}},
	}

	if err := Write(&buf, FormatJSON, out); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("not json: %v", err)
	}
	if decoded["depth"].(float64) != 1 {
		t.Errorf("unexpected depth %v", decoded["depth"])
	}
	if !strings.Contains(buf.String(), "\n  \"file\"") {
		t.Errorf("expected two-space indentation:\n%s", buf.String())
	}
}
