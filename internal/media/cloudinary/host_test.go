package cloudinary

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/natah-genesis/portfolio-api/config"
)

type destroyCall struct {
	path       string
	publicID   string
	invalidate string
}

func newDestroyServer(t *testing.T, status int, body string) (*httptest.Server, *[]destroyCall) {
	var mu sync.Mutex
	var calls []destroyCall
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The SDK posts a urlencoded body without a Content-Type header,
		// so r.FormValue sees nothing.
		raw, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		form, err := url.ParseQuery(string(raw))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		mu.Lock()
		calls = append(calls, destroyCall{
			path:       r.URL.Path,
			publicID:   form.Get("public_id"),
			invalidate: form.Get("invalidate"),
		})
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestNewHost_RequiresConfig(t *testing.T) {
	_, err := NewHost(config.CloudinaryConfig{CloudName: "demo"})
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, []string{"CLOUDINARY_API_KEY", "CLOUDINARY_API_SECRET"}, cfgErr.Missing)
}

func TestHost_DestroyVideo(t *testing.T) {
	srv, calls := newDestroyServer(t, http.StatusOK, `{"result":"ok"}`)
	host, err := NewHost(testCloud, WithUploadPrefix(srv.URL))
	require.NoError(t, err)

	err = host.Destroy(context.Background(), "projects/reel", "https://res.cloudinary.com/demo/video/upload/v1/projects/reel.mp4")
	require.NoError(t, err)

	require.Len(t, *calls, 1)
	call := (*calls)[0]
	assert.True(t, strings.HasSuffix(call.path, "/demo/video/destroy"), call.path)
	assert.Equal(t, "projects/reel", call.publicID)
	assert.Equal(t, "true", call.invalidate)
}

func TestHost_DestroyImageByDefault(t *testing.T) {
	srv, calls := newDestroyServer(t, http.StatusOK, `{"result":"ok"}`)
	host, err := NewHost(testCloud, WithUploadPrefix(srv.URL))
	require.NoError(t, err)

	require.NoError(t, host.Destroy(context.Background(), "projects/cover", "https://res.cloudinary.com/demo/image/upload/v1/projects/cover.png"))

	require.Len(t, *calls, 1)
	assert.True(t, strings.HasSuffix((*calls)[0].path, "/demo/image/destroy"), (*calls)[0].path)
	assert.Equal(t, "projects/cover", (*calls)[0].publicID)
}

func TestHost_DestroyNotFoundIsFine(t *testing.T) {
	srv, _ := newDestroyServer(t, http.StatusOK, `{"result":"not found"}`)
	host, err := NewHost(testCloud, WithUploadPrefix(srv.URL))
	require.NoError(t, err)

	assert.NoError(t, host.Destroy(context.Background(), "gone", ""))
}

func TestHost_DestroyProviderError(t *testing.T) {
	srv, _ := newDestroyServer(t, http.StatusUnauthorized, `{"error":{"message":"Invalid Signature"}}`)
	host, err := NewHost(testCloud, WithUploadPrefix(srv.URL))
	require.NoError(t, err)

	err = host.Destroy(context.Background(), "projects/reel", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "projects/reel")
}
