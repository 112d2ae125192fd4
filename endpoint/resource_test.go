package endpoint

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResource(t *testing.T) {
	res := Resource{
		http.MethodPost: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusCreated)
		}),
		http.MethodGet: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		}),
	}

	var set MethodSet = res

	t.Run("methods are sorted", func(t *testing.T) {
		assert.Equal(t, []string{http.MethodGet, http.MethodPost}, set.Methods())
	})

	t.Run("handler lookup", func(t *testing.T) {
		assert.NotNil(t, set.Handler(http.MethodGet))
		assert.Nil(t, set.Handler(http.MethodDelete))
	})

	tests := []struct {
		method string
		code   int
	}{
		{http.MethodGet, http.StatusOK},
		{http.MethodPost, http.StatusCreated},
		{http.MethodHead, http.StatusOK},
		{http.MethodDelete, http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run("dispatch "+tt.method, func(t *testing.T) {
			w := httptest.NewRecorder()
			res.ServeHTTP(w, httptest.NewRequest(tt.method, "/", nil))
			assert.Equal(t, tt.code, w.Code)
		})
	}

	t.Run("allow header on 405", func(t *testing.T) {
		w := httptest.NewRecorder()
		res.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/", nil))
		assert.Equal(t, "GET, POST", w.Header().Get("Allow"))
	})
}
