package http_test

import (
	"bufio"
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	storehttp "github.com/aretw0/domrec/pkg/adapters/http"
	"github.com/aretw0/domrec/pkg/adapters/memory"
	"github.com/aretw0/domrec/pkg/domain"
	"github.com/aretw0/domrec/pkg/observability"
	"github.com/aretw0/domrec/pkg/ports"
	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T, opts ...storehttp.Option) (*httptest.Server, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	srv := httptest.NewServer(storehttp.NewHandler(store, opts...))
	t.Cleanup(srv.Close)
	return srv, store
}

func TestStore_GetMissing(t *testing.T) {
	srv, _ := newServer(t)

	resp, err := http.Get(srv.URL + "/store?key=" + domain.ActionsKey)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestStore_PostThenGet(t *testing.T) {
	srv, store := newServer(t)
	body := `[{"selectors":["window"],"event":{"is":"PointerEvent","type":"pointermove","timeStamp":1}}]`

	resp, err := http.Post(srv.URL+"/store?key="+domain.ActionsKey, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	raw, err := store.Get(context.Background(), domain.ActionsKey)
	require.NoError(t, err)
	assert.JSONEq(t, body, string(raw))

	resp, err = http.Get(srv.URL + "/store?key=" + domain.ActionsKey)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestStore_RejectsInvalidRequests(t *testing.T) {
	srv, _ := newServer(t, storehttp.WithMaxBody(64))

	resp, err := http.Post(srv.URL+"/store", "application/json", strings.NewReader(`[]`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "missing key")

	resp, err = http.Post(srv.URL+"/store?key=k", "application/json", strings.NewReader(`{not json`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "invalid json")

	resp, err = http.Post(srv.URL+"/store?key=k", "application/json", strings.NewReader(`["`+strings.Repeat("x", 100)+`"]`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "too large")
}

func TestStore_GzipBody(t *testing.T) {
	srv, store := newServer(t)

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte(`[]`))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/store?key=k", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Content-Encoding", "gzip")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	raw, err := store.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(raw))
}

func TestStore_DeleteAndKeys(t *testing.T) {
	srv, store := newServer(t)
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, "a", []byte(`[]`)))

	resp, err := http.Get(srv.URL + "/keys")
	require.NoError(t, err)
	var buf bytes.Buffer
	_, _ = buf.ReadFrom(resp.Body)
	resp.Body.Close()
	assert.JSONEq(t, `["a"]`, buf.String())

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/store?key=a", nil)
	require.NoError(t, err)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	_, err = store.Get(ctx, "a")
	assert.ErrorIs(t, err, domain.ErrKeyNotFound)
}

func TestStore_Preflight(t *testing.T) {
	srv, _ := newServer(t)
	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/store?key=k", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Access-Control-Allow-Methods"), "POST")
}

func TestStore_HealthAndInfo(t *testing.T) {
	srv, _ := newServer(t)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/info")
	require.NoError(t, err)
	var buf bytes.Buffer
	_, _ = buf.ReadFrom(resp.Body)
	resp.Body.Close()
	assert.Contains(t, buf.String(), `"app":"domrec-store"`)
}

func TestStore_Metrics(t *testing.T) {
	m := observability.NewMetrics()
	srv, _ := newServer(t, storehttp.WithMetrics(m))

	resp, err := http.Get(srv.URL + "/store?key=missing")
	require.NoError(t, err)
	resp.Body.Close()

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	var buf bytes.Buffer
	_, _ = buf.ReadFrom(resp.Body)
	resp.Body.Close()
	assert.Contains(t, buf.String(), `domrec_store_requests_total{code="404",method="GET"} 1`)
}

func TestStore_EventsOnSave(t *testing.T) {
	srv, _ := newServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/events?key=k", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "event: ping\n", line)
	_, _ = reader.ReadString('\n') // data: connected
	_, _ = reader.ReadString('\n') // blank

	post, err := http.Post(srv.URL+"/store?key=k", "application/json", strings.NewReader(`[]`))
	require.NoError(t, err)
	post.Body.Close()

	line, err = reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "data: saved\n", line)
}

func TestClient_Contract(t *testing.T) {
	srv, _ := newServer(t)
	ports.RunActionStoreContract(t, storehttp.NewClient(srv.URL))
}

func TestClient_CompressedContract(t *testing.T) {
	srv, _ := newServer(t)
	ports.RunActionStoreContract(t, storehttp.NewClient(srv.URL, storehttp.WithCompression(1)))
}

func TestClient_SaveFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := storehttp.NewClient(srv.URL)
	err := c.Save(context.Background(), domain.ActionsKey, nil)
	assert.Error(t, err)

	_, err = c.Load(context.Background(), domain.ActionsKey)
	assert.ErrorIs(t, err, domain.ErrActionsNotFound)
}
