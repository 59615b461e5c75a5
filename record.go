package treelog

import (
	"fmt"
	"strings"
	"time"

	"github.com/wayneeseguin/treelog/pkg/types"
)

// makeRecord builds one augmented record on the emitting goroutine: the
// message is formatted, the goroutine's flattened context state (indentation
// depth, context tags, free-form tagged values) is merged in, and the
// tree-drawing prefix is computed. It runs synchronously before any
// formatting or output and does not block.
func (c *core) makeRecord(name string, level types.Level, drawing string, extra map[string]interface{}, format string, args []interface{}) *types.Record {
	message := format
	if len(args) > 0 {
		message = fmt.Sprintf(format, args...)
	}

	flat := c.contexts.Flatten()

	indentation := c.baseIndent
	if depth, ok := flat[counterIndentation].(int); ok {
		indentation += depth
	}

	tags := append([]string(nil), c.baseTags...)
	if scoped, ok := flat[stackContext].([]string); ok {
		tags = append(tags, scoped...)
	}
	context := ""
	if len(tags) > 0 {
		context = "[" + strings.Join(tags, contextSeparator) + "]"
	}

	fields := make(map[string]interface{}, len(flat)+len(extra))
	for key, value := range flat {
		if key == counterIndentation || key == stackContext {
			continue
		}
		fields[key] = value
	}
	for key, value := range extra {
		switch key {
		case fieldMessage, fieldTimestamp, counterIndentation, stackContext:
			panic(fmt.Sprintf("treelog: attempt to overwrite reserved record field %q", key))
		}
		if _, taken := fields[key]; taken {
			panic(fmt.Sprintf("treelog: attempt to overwrite record field %q", key))
		}
		fields[key] = value
	}

	return &types.Record{
		Level:       level,
		Message:     message,
		Time:        time.Now(),
		Name:        name,
		Context:     context,
		Indentation: indentation,
		Drawing:     c.graphics.drawing(indentation, drawing),
		Fields:      fields,
	}
}
