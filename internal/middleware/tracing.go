package middleware

import (
	"net/http"

	"github.com/kataras/iris/v12"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// Tracing 为每个请求创建服务端 span，并承接上游的 traceparent
func Tracing() iris.Handler {
	return func(ctx iris.Context) {
		req := ctx.Request()
		parent := otel.GetTextMapPropagator().Extract(req.Context(), propagation.HeaderCarrier(req.Header))

		route := ctx.Path()
		if r := ctx.GetCurrentRoute(); r != nil {
			route = r.Path()
		}
		c, span := otel.Tracer("gostore/http").Start(parent, ctx.Method()+" "+route,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", ctx.Method()),
				attribute.String("http.route", route),
			))
		defer span.End()

		ctx.ResetRequest(req.WithContext(c))
		ctx.Next()

		status := ctx.GetStatusCode()
		span.SetAttributes(attribute.Int("http.status_code", status))
		if status >= iris.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(status))
		}
	}
}
