package middleware_test

import (
	"compress/gzip"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ammerola/stock-ledger/internal/handlers/middleware"
	"github.com/ammerola/stock-ledger/internal/pkg/logger"
	"github.com/ammerola/stock-ledger/internal/pkg/metrics"
	"github.com/ammerola/stock-ledger/test/helpers"
)

var ok = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestRequestID(t *testing.T) {
	tests := []struct {
		name     string
		header   string
		incoming string
		validate func(*testing.T, string, string)
	}{
		{
			name: "generates_new_request_id",
			validate: func(t *testing.T, fromCtx, fromHeader string) {
				assert.Len(t, fromHeader, 36)
				assert.Equal(t, fromHeader, fromCtx)
			},
		},
		{
			name:     "uses_existing_request_id",
			incoming: "existing-id-123",
			validate: func(t *testing.T, fromCtx, fromHeader string) {
				assert.Equal(t, "existing-id-123", fromHeader)
				assert.Equal(t, "existing-id-123", fromCtx)
			},
		},
		{
			name:     "custom_header",
			header:   "X-Correlation-ID",
			incoming: "corr-9",
			validate: func(t *testing.T, fromCtx, fromHeader string) {
				assert.Equal(t, "corr-9", fromCtx)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var fromCtx string
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				fromCtx = logger.RequestID(r.Context())
			})

			header := tt.header
			if header == "" {
				header = "X-Request-ID"
			}
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.incoming != "" {
				req.Header.Set(header, tt.incoming)
			}
			w := httptest.NewRecorder()

			middleware.RequestID(tt.header)(handler).ServeHTTP(w, req)
			tt.validate(t, fromCtx, w.Header().Get(header))
		})
	}
}

func TestRealIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		forwarded  string
		want       string
	}{
		{name: "direct_client", remoteAddr: "203.0.113.7:5000", want: "203.0.113.7"},
		{name: "untrusted_forwarder_ignored", remoteAddr: "203.0.113.7:5000", forwarded: "10.1.1.1", want: "203.0.113.7"},
		{name: "trusted_proxy", remoteAddr: "10.0.0.2:443", forwarded: "198.51.100.4, 10.0.0.2", want: "198.51.100.4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got, _ = r.Context().Value(logger.ContextKeyClientIP).(string)
			})

			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tt.forwarded)
			}

			middleware.RealIP([]string{"10.0.0.2"})(handler).ServeHTTP(httptest.NewRecorder(), req)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLogger(t *testing.T) {
	l := &logger.Logger{Logger: helpers.TestLogger()}

	var sawTrace, sawPath bool
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, sawTrace = r.Context().Value(logger.ContextKeyTraceID).(string)
		path, _ := r.Context().Value(logger.ContextKeyPath).(string)
		sawPath = path == "/api/v1/warehouses"
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("test response"))
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/warehouses", nil)
	w := httptest.NewRecorder()
	middleware.Logger(l)(handler).ServeHTTP(w, req)

	assert.Equal(t, http.StatusTeapot, w.Code)
	assert.Equal(t, "test response", w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Trace-ID"))
	assert.True(t, sawTrace)
	assert.True(t, sawPath)
}

func TestRecovery(t *testing.T) {
	tests := []struct {
		name           string
		handler        http.HandlerFunc
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "recovers_from_panic",
			handler: func(w http.ResponseWriter, r *http.Request) {
				panic("test panic")
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `"code":"internal_error"`,
		},
		{
			name: "passes_through_normal_response",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("normal response"))
			},
			expectedStatus: http.StatusOK,
			expectedBody:   "normal response",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := middleware.Recovery(helpers.TestLogger())(tt.handler)

			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			w := httptest.NewRecorder()
			wrapped.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
		})
	}
}

func TestRateLimit(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	wrapped := middleware.RateLimit(ctx, 2, time.Second)(ok)

	send := func(remote string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.RemoteAddr = remote
		w := httptest.NewRecorder()
		wrapped.ServeHTTP(w, req)
		return w
	}

	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusOK, send("127.0.0.1:1234").Code)
	}

	limited := send("127.0.0.1:1234")
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.Equal(t, "1", limited.Header().Get("Retry-After"))
	assert.Contains(t, limited.Body.String(), "rate_limited")

	assert.Equal(t, http.StatusOK, send("192.168.1.1:5678").Code, "limits are per client")
}

func TestCORS(t *testing.T) {
	tests := []struct {
		name           string
		allowedOrigins []string
		origin         string
		method         string
		expectedStatus int
		expectedAllow  string
	}{
		{name: "wildcard", allowedOrigins: []string{"*"}, origin: "https://example.com", method: http.MethodGet,
			expectedStatus: http.StatusOK, expectedAllow: "https://example.com"},
		{name: "specific_origin", allowedOrigins: []string{"https://backoffice.example.com"}, origin: "https://backoffice.example.com",
			method: http.MethodGet, expectedStatus: http.StatusOK, expectedAllow: "https://backoffice.example.com"},
		{name: "rejected_origin", allowedOrigins: []string{"https://backoffice.example.com"}, origin: "https://evil.example.com",
			method: http.MethodGet, expectedStatus: http.StatusOK},
		{name: "preflight", allowedOrigins: []string{"*"}, origin: "https://example.com", method: http.MethodOptions,
			expectedStatus: http.StatusNoContent, expectedAllow: "https://example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := middleware.CORS(tt.allowedOrigins, "X-Request-ID")(ok)

			req := httptest.NewRequest(tt.method, "/test", nil)
			req.Header.Set("Origin", tt.origin)
			w := httptest.NewRecorder()
			wrapped.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectedAllow, w.Header().Get("Access-Control-Allow-Origin"))
			if tt.expectedAllow != "" {
				assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "X-Request-ID")
			}
		})
	}
}

func TestSecureHeaders(t *testing.T) {
	w := httptest.NewRecorder()
	middleware.SecureHeaders(ok).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Empty(t, w.Header().Get("Strict-Transport-Security"), "plain HTTP gets no HSTS")
}

func TestTimeout(t *testing.T) {
	var deadline time.Time
	var hasDeadline bool
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		deadline, hasDeadline = r.Context().Deadline()
	})

	start := time.Now()
	middleware.Timeout(50*time.Millisecond)(handler).
		ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/test", nil))

	require.True(t, hasDeadline)
	assert.WithinDuration(t, start.Add(50*time.Millisecond), deadline, 20*time.Millisecond)

	hasDeadline = false
	middleware.Timeout(0)(handler).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/test", nil))
	assert.False(t, hasDeadline, "zero disables the bound")
}

func TestCompression(t *testing.T) {
	body := strings.Repeat(`{"item_id":"P1","available":3}`, 50)
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(body))
	})

	t.Run("gzip_when_accepted", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/warehouses", nil)
		req.Header.Set("Accept-Encoding", "gzip, deflate")
		w := httptest.NewRecorder()
		middleware.Compression(handler).ServeHTTP(w, req)

		require.Equal(t, "gzip", w.Header().Get("Content-Encoding"))
		zr, err := gzip.NewReader(w.Body)
		require.NoError(t, err)
		plain, err := io.ReadAll(zr)
		require.NoError(t, err)
		assert.Equal(t, body, string(plain))
	})

	t.Run("workbooks_pass_through", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/warehouses/x/stock/export", nil)
		req.Header.Set("Accept-Encoding", "gzip")
		w := httptest.NewRecorder()
		middleware.Compression(handler).ServeHTTP(w, req)

		assert.Empty(t, w.Header().Get("Content-Encoding"))
		assert.Equal(t, body, w.Body.String())
	})
}

func TestMetrics(t *testing.T) {
	m := metrics.New()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/warehouses/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	wrapped := middleware.Metrics(m)(mux)

	for _, id := range []string{"a", "b"} {
		wrapped.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/warehouses/"+id, nil))
	}
	wrapped.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	families, err := m.Registry().Gather()
	require.NoError(t, err)

	counts := map[string]float64{}
	for _, f := range families {
		if f.GetName() != "stock_ledger_http_requests_total" {
			continue
		}
		for _, metric := range f.GetMetric() {
			var route, status string
			for _, lp := range metric.GetLabel() {
				switch lp.GetName() {
				case "route":
					route = lp.GetValue()
				case "status":
					status = lp.GetValue()
				}
			}
			counts[route+" "+status] += metric.GetCounter().GetValue()
		}
	}

	assert.Equal(t, 2.0, counts["GET /api/v1/warehouses/{id} 404"], "ids collapse onto the pattern")
	assert.Equal(t, 1.0, counts["unmatched 404"])
}

func TestChain(t *testing.T) {
	var order []string
	tag := func(name string) middleware.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	middleware.Chain(ok, tag("outer"), tag("inner")).
		ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, []string{"outer", "inner"}, order)
}
