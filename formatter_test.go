package treelog

import (
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/wayneeseguin/treelog/pkg/types"
)

func testRecord() *types.Record {
	return &types.Record{
		Level:   types.LevelInfo,
		Message: "attaching volume",
		Time:    time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC),
		Name:    "storage",
		Context: "[setup;disks]",
		Drawing: GraphicsASCII.IndentSegment,
	}
}

// TestConsoleFormatter tests the single-line console layout
func TestConsoleFormatter(t *testing.T) {
	formatter := &ConsoleFormatter{}
	out, err := formatter.Format(testRecord())
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}

	want := "09:26:53.000|INFO  |[setup;disks]..| attaching volume\n"
	if string(out) != want {
		t.Errorf("Expected %q, got %q", want, string(out))
	}
}

// TestConsoleFormatterMultiline tests that continuation lines repeat the
// prefix and drawing
func TestConsoleFormatterMultiline(t *testing.T) {
	record := testRecord()
	record.Message = "first\nsecond"

	out, err := (&ConsoleFormatter{}).Format(record)
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}

	lines := strings.Split(strings.TrimRight(string(out), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected 2 lines, got %d: %q", len(lines), string(out))
	}
	for i, line := range lines {
		if !strings.HasPrefix(line, "09:26:53.000|INFO  |[setup;disks]..| ") {
			t.Errorf("Line %d missing the prefix: %q", i, line)
		}
	}
	if !strings.HasSuffix(lines[1], "second") {
		t.Errorf("Expected the continuation text, got %q", lines[1])
	}
}

// TestConsoleFormatterTimestampFormat tests the custom time layout
func TestConsoleFormatterTimestampFormat(t *testing.T) {
	formatter := &ConsoleFormatter{TimestampFormat: "15:04:05"}
	out, err := formatter.Format(testRecord())
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}
	if !strings.HasPrefix(string(out), "09:26:53|") {
		t.Errorf("Expected the custom layout, got %q", string(out))
	}
}

// TestLevelColorFallback tests color resolution for custom severities
func TestLevelColorFallback(t *testing.T) {
	custom := types.LevelError + 3
	if got := levelColor(custom); got != levelColors[types.LevelError] {
		t.Errorf("Expected the nearest lower level's color")
	}
	if got := levelColor(types.LevelError); got != levelColors[types.LevelError] {
		t.Errorf("Expected an exact match to win")
	}
}

// TestYAMLFormatter tests the YAML document rendering
func TestYAMLFormatter(t *testing.T) {
	record := testRecord()
	record.Fields = map[string]interface{}{"device": "sda"}

	out, err := (&YAMLFormatter{}).Format(record)
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}
	if !strings.HasSuffix(string(out), "---\n") {
		t.Errorf("Expected the document separator, got %q", string(out))
	}

	var decoded struct {
		Level   string `yaml:"level"`
		Message string `yaml:"message"`
		Context string `yaml:"context"`
		Fields  map[string]string
	}
	if err := yaml.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if decoded.Level != "INFO" || decoded.Message != "attaching volume" {
		t.Errorf("Unexpected document: %+v", decoded)
	}
	if decoded.Fields["device"] != "sda" {
		t.Errorf("Expected the fields map, got %+v", decoded.Fields)
	}
}
