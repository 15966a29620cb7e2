package tracer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTraceID(t *testing.T) {
	assert.Equal(t, "", TraceID(context.Background()))

	id := NewTraceID()
	assert.Len(t, id, 36)
	assert.NotEqual(t, id, NewTraceID())

	ctx := WithTraceID(context.Background(), id)
	assert.Equal(t, id, TraceID(ctx))
}
