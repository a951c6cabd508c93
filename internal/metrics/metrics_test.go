package metrics

import (
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountersAdvance(t *testing.T) {
	set := NewSet()

	set.SessionCreated()
	set.SessionCreated()
	set.SessionDeleted()
	set.PatchApplied()
	set.PatchRejected()
	set.ModelBuilt()
	set.SolveFinished("optimal", 0.012)
	set.SolveFinished("infeasible", 0.003)

	assert.Equal(t, 2.0, testutil.ToFloat64(set.SessionsCreated))
	assert.Equal(t, 1.0, testutil.ToFloat64(set.SessionsDeleted))
	assert.Equal(t, 1.0, testutil.ToFloat64(set.PatchesApplied))
	assert.Equal(t, 1.0, testutil.ToFloat64(set.PatchesRejected))
	assert.Equal(t, 1.0, testutil.ToFloat64(set.ModelBuilds))
	assert.Equal(t, 1.0, testutil.ToFloat64(set.Solves.WithLabelValues("optimal")))
	assert.Equal(t, 1.0, testutil.ToFloat64(set.Solves.WithLabelValues("infeasible")))
}

func TestSetsAreIsolated(t *testing.T) {
	a := NewSet()
	b := NewSet()
	a.SessionCreated()

	assert.Equal(t, 1.0, testutil.ToFloat64(a.SessionsCreated))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.SessionsCreated))
}

func TestHandlerExposesTextFormat(t *testing.T) {
	set := NewSet()
	set.SessionCreated()

	rec := httptest.NewRecorder()
	set.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "optspec_sessions_created_total 1")
}
