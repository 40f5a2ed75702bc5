package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZerologTracerSpanLifecycle(t *testing.T) {
	var buf bytes.Buffer
	tracer := NewZerologTracer(zerolog.New(&buf))

	ctx, finish := tracer.StartSpan(context.Background(), "interrogate", map[string]any{
		"run_id":    "run-123",
		"max_turns": 5,
	})
	require.NotNil(t, ctx)
	finish(nil)

	out := buf.String()
	assert.Contains(t, out, "span_start")
	assert.Contains(t, out, "span_end")
	assert.Contains(t, out, "interrogate")
	assert.Contains(t, out, "run-123")
}

func TestZerologTracerSpanEndCarriesError(t *testing.T) {
	var buf bytes.Buffer
	tracer := NewZerologTracer(zerolog.New(&buf))

	_, finish := tracer.StartSpan(context.Background(), "interrogate", nil)
	finish(errors.New("run failed"))

	assert.Contains(t, buf.String(), "run failed")
}

func TestZerologTracerEventInsideSpan(t *testing.T) {
	var buf bytes.Buffer
	tracer := NewZerologTracer(zerolog.New(&buf))

	ctx, finish := tracer.StartSpan(context.Background(), "interrogate", map[string]any{"run_id": "run-123"})
	tracer.Event(ctx, "cache_hit", map[string]any{"key": "answer:abc"})
	finish(nil)

	// The event line inherits the span context fields.
	var eventLine string
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if strings.Contains(line, "cache_hit") {
			eventLine = line
		}
	}
	require.NotEmpty(t, eventLine)

	var fields map[string]any
	require.NoError(t, json.Unmarshal([]byte(eventLine), &fields))
	assert.Equal(t, "answer:abc", fields["key"])
	assert.Equal(t, "interrogate", fields["span"])
}

func TestZerologTracerEventWithoutSpan(t *testing.T) {
	var buf bytes.Buffer
	tracer := NewZerologTracer(zerolog.New(&buf))

	tracer.Event(context.Background(), "store_error", map[string]any{"op": "save_turn"})

	out := buf.String()
	assert.Contains(t, out, "store_error")
	assert.Contains(t, out, "save_turn")
}
