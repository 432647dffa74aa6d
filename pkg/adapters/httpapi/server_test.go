package httpapi_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wyattjouan/stagehand"
	"github.com/wyattjouan/stagehand/pkg/adapters/httpapi"
	"github.com/wyattjouan/stagehand/pkg/domain"
)

const legacyPayload = `{"objName":"Stage","info":{},"variables":[],"children":[]}`

type stubSource struct {
	payloads map[string][]byte
}

func (s *stubSource) Fetch(ctx context.Context, id string) ([]byte, error) {
	payload, ok := s.payloads[id]
	if !ok {
		return nil, &domain.ProjectNotFoundError{ID: id}
	}
	return payload, nil
}

func newServer(t *testing.T) (*httptest.Server, *stagehand.Player) {
	t.Helper()
	reg := prometheus.NewRegistry()
	player := stagehand.New(
		stagehand.WithProjectSource(&stubSource{payloads: map[string][]byte{
			"42": []byte(legacyPayload),
		}}),
		stagehand.WithMetrics(reg),
	)
	srv := httptest.NewServer(httpapi.NewHandler(player, reg, nil))
	t.Cleanup(srv.Close)
	return srv, player
}

func post(t *testing.T, url string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", nil)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestLoadEndpoint(t *testing.T) {
	srv, _ := newServer(t)

	resp := post(t, srv.URL+"/projects/42/load")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var status struct {
		Attached bool   `json:"attached"`
		SourceID string `json:"source_id"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
	assert.True(t, status.Attached)
	assert.Equal(t, "42", status.SourceID)
}

func TestLoadEndpoint_NotFound(t *testing.T) {
	srv, _ := newServer(t)
	resp := post(t, srv.URL+"/projects/nope/load")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestLifecycleEndpoints(t *testing.T) {
	srv, player := newServer(t)

	// No session yet.
	resp := post(t, srv.URL+"/session/resume")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	player.LoadFromBuffer(context.Background(), []byte(legacyPayload), domain.ClassLegacyJSON)

	resp = post(t, srv.URL+"/session/resume")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Resuming a running session is a conflict.
	resp = post(t, srv.URL+"/session/resume")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = post(t, srv.URL+"/session/pause")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = post(t, srv.URL+"/session/green-flag")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, player.Session().Running())

	resp = post(t, srv.URL+"/session/toggle")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.False(t, player.Session().Running())
}

func TestSessionStatus(t *testing.T) {
	srv, player := newServer(t)

	resp, err := http.Get(srv.URL + "/session")
	require.NoError(t, err)
	defer resp.Body.Close()

	var status struct {
		Attached bool `json:"attached"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
	assert.False(t, status.Attached)

	player.LoadFromBuffer(context.Background(), []byte(legacyPayload), domain.ClassLegacyJSON)

	resp, err = http.Get(srv.URL + "/session")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
	assert.True(t, status.Attached)
}

func TestOptionsPatch(t *testing.T) {
	srv, player := newServer(t)

	req, err := http.NewRequest(http.MethodPatch, srv.URL+"/options",
		strings.NewReader(`{"theme":"dark","frame_rate":60}`))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "dark", player.Options().Theme)
	assert.Equal(t, 60, player.Options().FrameRate)
}

func TestOptionsPatch_BadBody(t *testing.T) {
	srv, _ := newServer(t)

	req, err := http.NewRequest(http.MethodPatch, srv.URL+"/options", strings.NewReader("not json"))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	srv, player := newServer(t)
	player.LoadFromBuffer(context.Background(), []byte(legacyPayload), domain.ClassLegacyJSON)

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := new(strings.Builder)
	_, err = io.Copy(body, resp.Body)
	require.NoError(t, err)
	assert.Contains(t, body.String(), "stagehand_loads_started_total")
}
