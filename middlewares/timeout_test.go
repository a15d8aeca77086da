package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/loom/middlewares"
)

func TestTimeout(t *testing.T) {
	t.Parallel()

	t.Run("fast handler completes", func(t *testing.T) {
		t.Parallel()
		rec := serve(middlewares.Timeout(time.Second), ok, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("slow handler gets 503", func(t *testing.T) {
		t.Parallel()
		slow := func(w http.ResponseWriter, r *http.Request) {
			<-r.Context().Done()
			w.WriteHeader(http.StatusOK)
		}
		rec := serve(middlewares.Timeout(20*time.Millisecond, middlewares.WithTimeoutMessage("too slow")),
			slow, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusServiceUnavailable, rec.Code)
		require.Equal(t, "too slow", rec.Body.String())
	})

	t.Run("handler sees the deadline", func(t *testing.T) {
		t.Parallel()
		var has bool
		serve(middlewares.Timeout(0), func(w http.ResponseWriter, r *http.Request) {
			_, has = r.Context().Deadline()
		}, httptest.NewRequest(http.MethodGet, "/", nil))
		require.True(t, has)
	})
}
