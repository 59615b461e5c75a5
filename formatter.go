package treelog

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/wayneeseguin/treelog/pkg/types"
)

// Formatter renders an augmented record to bytes for a sink.
type Formatter interface {
	Format(record *types.Record) ([]byte, error)
}

// levelColors paints the console line by severity.
var levelColors = map[types.Level]*color.Color{
	types.LevelDebug:  color.New(color.FgHiBlack),
	types.LevelInfo:   color.New(color.FgWhite),
	types.LevelNotice: color.New(color.FgHiWhite),
	types.LevelWarn:   color.New(color.FgYellow),
	types.LevelError:  color.New(color.FgRed),
}

// levelColor resolves the color for a level, falling back to the nearest
// lower configured level for custom severities.
func levelColor(level types.Level) *color.Color {
	if c, ok := levelColors[level]; ok {
		return c
	}
	nearest := types.LevelDebug
	for known := range levelColors {
		if known <= level && known > nearest {
			nearest = known
		}
	}
	return levelColors[nearest]
}

// ConsoleFormatter renders records as single console lines:
// timestamp|LEVEL|context|drawing message.
type ConsoleFormatter struct {
	// TimestampFormat is the time layout; empty means "15:04:05.000".
	TimestampFormat string

	// Coloring paints the message by severity.
	Coloring bool
}

// Format renders one line, multi-line messages continuing under the same
// drawing prefix.
func (f *ConsoleFormatter) Format(record *types.Record) ([]byte, error) {
	layout := f.TimestampFormat
	if layout == "" {
		layout = defaultTimestampFormat
	}

	var b strings.Builder
	prefix := fmt.Sprintf("%s|%-6s|%s", record.Time.Format(layout), record.Level, record.Context)
	for i, line := range strings.Split(record.Message, "\n") {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(prefix)
		b.WriteString(record.Drawing)
		if line != "" {
			b.WriteString(" ")
			if f.Coloring {
				line = levelColor(record.Level).Sprint(line)
			}
			b.WriteString(line)
		}
	}
	b.WriteString("\n")
	return []byte(b.String()), nil
}

// YAMLFormatter renders each record as a YAML document, separated by "---".
// Useful for log files meant to be post-processed.
type YAMLFormatter struct{}

// Format renders the record's full state as YAML.
func (f *YAMLFormatter) Format(record *types.Record) ([]byte, error) {
	document := map[string]interface{}{
		"time":        record.Time,
		"level":       record.Level.String(),
		"name":        record.Name,
		"message":     record.Message,
		"context":     record.Context,
		"indentation": record.Indentation,
	}
	if len(record.Fields) > 0 {
		document["fields"] = record.Fields
	}
	out, err := yaml.Marshal(document)
	if err != nil {
		return nil, fmt.Errorf("marshaling record: %w", err)
	}
	return append(out, []byte("---\n")...), nil
}
