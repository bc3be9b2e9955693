package middleware

import (
	"testing"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/httptest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

func TestTracingRecordsServerSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)))
	defer otel.SetTracerProvider(noop.NewTracerProvider())

	var inner trace.SpanContext
	app := iris.New()
	app.Use(Tracing())
	app.Get("/orders/{id:uint64}", func(ctx iris.Context) {
		inner = trace.SpanContextFromContext(ctx.Request().Context())
		ctx.StatusCode(iris.StatusNoContent)
	})
	httptest.New(t, app).GET("/orders/7").Expect().Status(iris.StatusNoContent)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, trace.SpanKindServer, spans[0].SpanKind())
	assert.Equal(t, spans[0].SpanContext().SpanID(), inner.SpanID())
	assert.Contains(t, spans[0].Name(), "GET /orders/")
}
