package tracing

import (
	"context"
	"testing"

	"github.com/opentracing/opentracing-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitTracer_Disabled(t *testing.T) {
	tr, closeFn, err := InitTracer(Config{})
	require.NoError(t, err)
	defer closeFn()

	assert.IsType(t, opentracing.NoopTracer{}, tr)

	span, ctx := StartSpan(context.Background(), "on_candle")
	span.SetTag("symbol", "BTC-USDT")
	span.Finish()
	assert.Nil(t, ctx.Value(TraceIDKey))
}
