package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/optspec/internal/builder"
	"github.com/vk/optspec/internal/metrics"
	"github.com/vk/optspec/internal/model"
	"github.com/vk/optspec/internal/registry"
	"github.com/vk/optspec/internal/session"
	"github.com/vk/optspec/internal/solver"
	"github.com/vk/optspec/internal/source"
	"github.com/vk/optspec/internal/spec"
)

const configYAML = `
template: fixed_cost
options:
  budget: 10
`

const configJSON = `{"template": "fixed_cost"}`

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	reg := registry.New()
	reg.RegisterTemplate("fixed_cost", func(ctx context.Context, s *spec.Specification) (*model.Handle, error) {
		h := model.NewHandle()
		if _, err := h.AddBinary("x"); err != nil {
			return nil, err
		}
		if err := h.AddConstraint(&model.Constraint{
			Label: "must_pick", Terms: []model.Term{{Coef: 1, Var: "x"}},
			Relation: model.GreaterEqual, RHS: 1,
		}); err != nil {
			return nil, err
		}
		h.SetObjective(&model.Objective{Sense: model.Minimize, Terms: []model.Term{{Coef: 5, Var: "x"}}})
		return h, nil
	})

	loader := source.NewLoader(source.NewCallables())
	t.Cleanup(func() { loader.Close() })

	set := metrics.NewSet()
	store := session.NewStore(builder.New(loader, reg), solver.NewBranchBound(), set)
	ts := httptest.NewServer(New(store, set.Handler()).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func doRequest(t *testing.T, method, url, contentType, body string) (*http.Response, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { res.Body.Close() })

	var decoded map[string]any
	if res.StatusCode != http.StatusNoContent {
		require.NoError(t, json.NewDecoder(res.Body).Decode(&decoded))
	}
	return res, decoded
}

func createSession(t *testing.T, ts *httptest.Server) string {
	t.Helper()
	res, body := doRequest(t, "POST", ts.URL+"/sessions", "", configYAML)
	require.Equal(t, http.StatusCreated, res.StatusCode)
	id, ok := body["id"].(string)
	require.True(t, ok)
	return id
}

func TestCreateSessionYAML(t *testing.T) {
	ts := newTestServer(t)

	res, body := doRequest(t, "POST", ts.URL+"/sessions", "", configYAML)
	require.Equal(t, http.StatusCreated, res.StatusCode)
	assert.Equal(t, "fixed_cost", body["template"])
	assert.Equal(t, "created", body["status"])
	assert.NotEmpty(t, body["id"])
}

func TestCreateSessionJSONByContentType(t *testing.T) {
	ts := newTestServer(t)

	res, body := doRequest(t, "POST", ts.URL+"/sessions", "application/json", configJSON)
	require.Equal(t, http.StatusCreated, res.StatusCode)
	assert.Equal(t, "fixed_cost", body["template"])
}

func TestCreateSessionExplicitFormatParam(t *testing.T) {
	ts := newTestServer(t)

	res, _ := doRequest(t, "POST", ts.URL+"/sessions?format=json", "", configJSON)
	require.Equal(t, http.StatusCreated, res.StatusCode)
}

func TestCreateSessionRejectsMalformedConfig(t *testing.T) {
	ts := newTestServer(t)

	res, body := doRequest(t, "POST", ts.URL+"/sessions", "", "options: {}\n")
	require.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Contains(t, body["error"], "template")
}

func TestCreateSessionRejectsUnknownFormat(t *testing.T) {
	ts := newTestServer(t)

	res, _ := doRequest(t, "POST", ts.URL+"/sessions?format=toml", "", configYAML)
	require.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestGetSessionDetail(t *testing.T) {
	ts := newTestServer(t)
	id := createSession(t, ts)

	res, body := doRequest(t, "GET", ts.URL+"/sessions/"+id, "", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, id, body["id"])
	assert.Equal(t, "created", body["status"])

	specDoc, ok := body["specification"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "fixed_cost", specDoc["template"])
}

func TestGetUnknownSessionIs404(t *testing.T) {
	ts := newTestServer(t)

	res, _ := doRequest(t, "GET", ts.URL+"/sessions/ghost", "", "")
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestListSessions(t *testing.T) {
	ts := newTestServer(t)
	createSession(t, ts)
	createSession(t, ts)

	res, err := http.Get(ts.URL + "/sessions")
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	var summaries []map[string]any
	require.NoError(t, json.NewDecoder(res.Body).Decode(&summaries))
	assert.Len(t, summaries, 2)
}

func TestSolveAndSolution(t *testing.T) {
	ts := newTestServer(t)
	id := createSession(t, ts)

	res, body := doRequest(t, "POST", ts.URL+"/sessions/"+id+"/solve", "", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "optimal", body["status"])
	assert.Equal(t, 5.0, body["objective"])

	res, body = doRequest(t, "GET", ts.URL+"/sessions/"+id+"/solution", "", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "optimal", body["status"])
}

func TestSolutionBeforeSolveIs404(t *testing.T) {
	ts := newTestServer(t)
	id := createSession(t, ts)

	res, _ := doRequest(t, "GET", ts.URL+"/sessions/"+id+"/solution", "", "")
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestPatchSingleObjectAndList(t *testing.T) {
	ts := newTestServer(t)
	id := createSession(t, ts)

	single := `{"op": "merge", "path": ["options", "budget"], "value": 20}`
	res, body := doRequest(t, "PATCH", ts.URL+"/sessions/"+id, "application/json", single)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "updated", body["status"])

	list := `[{"op": "merge", "path": ["options", "budget"], "value": 30}]`
	res, body = doRequest(t, "PATCH", ts.URL+"/sessions/"+id, "application/json", list)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "updated", body["status"])
}

func TestPatchEvictsSolution(t *testing.T) {
	ts := newTestServer(t)
	id := createSession(t, ts)

	res, _ := doRequest(t, "POST", ts.URL+"/sessions/"+id+"/solve", "", "")
	require.Equal(t, http.StatusOK, res.StatusCode)

	patchBody := `{"op": "merge", "path": ["options", "budget"], "value": 99}`
	res, _ = doRequest(t, "PATCH", ts.URL+"/sessions/"+id, "application/json", patchBody)
	require.Equal(t, http.StatusOK, res.StatusCode)

	res, _ = doRequest(t, "GET", ts.URL+"/sessions/"+id+"/solution", "", "")
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestPatchInvalidSectionIs400(t *testing.T) {
	ts := newTestServer(t)
	id := createSession(t, ts)

	bad := `{"op": "merge", "path": ["bogus", "x"], "value": 1}`
	res, _ := doRequest(t, "PATCH", ts.URL+"/sessions/"+id, "application/json", bad)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestPatchMalformedBodyIs400(t *testing.T) {
	ts := newTestServer(t)
	id := createSession(t, ts)

	res, _ := doRequest(t, "PATCH", ts.URL+"/sessions/"+id, "application/json", "{not json")
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestDeleteSession(t *testing.T) {
	ts := newTestServer(t)
	id := createSession(t, ts)

	res, _ := doRequest(t, "DELETE", ts.URL+"/sessions/"+id, "", "")
	require.Equal(t, http.StatusNoContent, res.StatusCode)

	res, _ = doRequest(t, "GET", ts.URL+"/sessions/"+id, "", "")
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)

	res, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)
	createSession(t, ts)

	res, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	raw, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "optspec_sessions_created_total 1")
}

func TestBuildFailureIs500(t *testing.T) {
	ts := newTestServer(t)

	config := configYAML + `
overrides:
  constraints:
    - target: ghost_constraint
`
	res, body := doRequest(t, "POST", ts.URL+"/sessions", "", config)
	require.Equal(t, http.StatusCreated, res.StatusCode)
	id := body["id"].(string)

	res, _ = doRequest(t, "POST", ts.URL+"/sessions/"+id+"/solve", "", "")
	assert.Equal(t, http.StatusInternalServerError, res.StatusCode)

	res, body = doRequest(t, "GET", ts.URL+"/sessions/"+id, "", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "error", body["status"])
	assert.Contains(t, body["error"], "ghost_constraint")
}
