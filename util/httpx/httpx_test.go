package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewTimeout(t *testing.T) {
	require.Equal(t, DefaultTimeout, New(0).Timeout)
	require.Equal(t, DefaultTimeout, New(-time.Second).Timeout)
	require.Equal(t, 3*time.Second, New(3*time.Second).Timeout)
	require.Same(t, New(0).Transport, New(time.Second).Transport, "clients share one pool")
}

func TestNewEnforcesDeadline(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	_, err := New(50 * time.Millisecond).Get(srv.URL)
	require.Error(t, err)
}
