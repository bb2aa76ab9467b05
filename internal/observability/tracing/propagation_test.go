package tracing

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

const sampleTraceParent = "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01"

func TestGinMiddlewareExtractsTraceParent(t *testing.T) {
	SetPropagator()
	gin.SetMode(gin.TestMode)

	var sc trace.SpanContext
	engine := gin.New()
	engine.Use(GinMiddleware())
	engine.GET("/", func(c *gin.Context) {
		sc = trace.SpanContextFromContext(c.Request.Context())
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("traceparent", sampleTraceParent)
	engine.ServeHTTP(httptest.NewRecorder(), req)

	if !sc.IsValid() {
		t.Fatalf("expected a valid remote span context")
	}
	if got := sc.TraceID().String(); got != "4bf92f3577b34da6a3ce929d0e0e4736" {
		t.Fatalf("unexpected trace id %q", got)
	}
	if got := sc.SpanID().String(); got != "00f067aa0ba902b7" {
		t.Fatalf("unexpected span id %q", got)
	}
}

func TestGinMiddlewareWithoutHeaders(t *testing.T) {
	SetPropagator()
	gin.SetMode(gin.TestMode)

	var sc trace.SpanContext
	engine := gin.New()
	engine.Use(GinMiddleware())
	engine.GET("/", func(c *gin.Context) {
		sc = trace.SpanContextFromContext(c.Request.Context())
		c.Status(http.StatusOK)
	})

	engine.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if sc.IsValid() {
		t.Fatalf("expected no span context without trace headers")
	}
}
