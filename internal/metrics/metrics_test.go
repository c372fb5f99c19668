package metrics

import (
	"bufio"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMiddleware_UsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware)
	r.Get("/accounts/{accountID}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/accounts/{accountID}", "418"))

	for _, id := range []string{"a", "b", "c"} {
		req := httptest.NewRequest("GET", "/accounts/"+id, nil)
		r.ServeHTTP(httptest.NewRecorder(), req)
	}

	after := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/accounts/{accountID}", "418"))
	if after-before != 3 {
		t.Errorf("expected 3 requests under the route pattern, got %v", after-before)
	}
}

func TestHandler_ServesMetrics(t *testing.T) {
	TransactionsTotal.WithLabelValues("deposit").Inc()

	w := httptest.NewRecorder()
	Handler().ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestMiddleware_PassesHijack(t *testing.T) {
	var hijacked bool
	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hj, ok := w.(http.Hijacker)
		if !ok {
			t.Error("wrapped writer does not implement http.Hijacker")
			return
		}
		if _, _, err := hj.Hijack(); err != nil {
			t.Errorf("hijack failed: %v", err)
			return
		}
		hijacked = true
	}))

	h.ServeHTTP(&hijackRecorder{ResponseRecorder: httptest.NewRecorder()}, httptest.NewRequest("GET", "/ws", nil))
	if !hijacked {
		t.Error("expected the handler to hijack the connection")
	}
}

// hijackRecorder is a ResponseRecorder that can be hijacked.
type hijackRecorder struct {
	*httptest.ResponseRecorder
}

func (r *hijackRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	server, client := net.Pipe()
	client.Close()
	return server, bufio.NewReadWriter(bufio.NewReader(server), bufio.NewWriter(server)), nil
}
