package logtrace

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCorrelationIDRoundTrip(t *testing.T) {
	ctx := CtxWithCorrelationID(context.Background(), "collect-42")
	assert.Equal(t, "collect-42", CorrelationIDFromContext(ctx))
}

func TestCorrelationIDMissing(t *testing.T) {
	assert.Equal(t, "unknown", CorrelationIDFromContext(context.Background()))
}

func TestCtxWithNewCorrelationID(t *testing.T) {
	ctx := CtxWithNewCorrelationID(context.Background())
	id := CorrelationIDFromContext(ctx)
	assert.NotEmpty(t, id)
	assert.NotEqual(t, "unknown", id)
}

func TestOriginRoundTrip(t *testing.T) {
	ctx := CtxWithOrigin(context.Background(), "cli")
	assert.Equal(t, "cli", OriginFromContext(ctx))
	assert.Equal(t, "", OriginFromContext(context.Background()))
}

func TestWithFields(t *testing.T) {
	base := Fields{FieldModule: "runner", FieldAsset: "1M.bin"}
	merged := WithFields(base, Fields{FieldAsset: "1K.bin", FieldRunIndex: 3})

	assert.Equal(t, "runner", merged[FieldModule])
	assert.Equal(t, "1K.bin", merged[FieldAsset])
	assert.Equal(t, 3, merged[FieldRunIndex])

	// base must not be mutated
	assert.Equal(t, "1M.bin", base[FieldAsset])
	assert.NotContains(t, base, FieldRunIndex)
}
