package metrics

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutcome(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, "ok"},
		{common.ErrInvalidCredentials, "invalid_credentials"},
		{common.ErrTokenExpired, "token_expired"},
		{fmt.Errorf("%w: sig", common.ErrInvalidToken), "invalid_token"},
		{common.ErrPolicyRejected, "policy_rejected"},
		{common.ErrPasswordMismatch, "password_mismatch"},
		{common.ErrorAlreadyExists, "conflict"},
		{common.ErrorNotFound, "not_found"},
		{errors.New("boom"), "error"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Outcome(tt.err), "error %v", tt.err)
	}
}

func TestObserve(t *testing.T) {
	m := New()

	m.Observe(OpLogin, nil)
	m.Observe(OpLogin, nil)
	m.Observe(OpLogin, common.ErrInvalidCredentials)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.operations.WithLabelValues(OpLogin, "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.operations.WithLabelValues(OpLogin, "invalid_credentials")))
}

func TestHashStarted(t *testing.T) {
	m := New()

	done := m.HashStarted()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.hashInFlight))
	done()
	assert.Equal(t, 0.0, testutil.ToFloat64(m.hashInFlight))
	assert.Equal(t, 1, testutil.CollectAndCount(m.hashDuration))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	m.Observe(OpRegister, nil)
	m.HashStarted()()
}

func TestHandler(t *testing.T) {
	m := New()
	m.Observe(OpAuthenticate, common.ErrTokenExpired)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `gophauth_operations_total{operation="authenticate",outcome="token_expired"} 1`), body)
}

func TestHashDurationHelp(t *testing.T) {
	m := New()
	m.HashStarted()()

	families, err := m.Registry().Gather()
	require.NoError(t, err)

	var help string
	for _, f := range families {
		if f.GetName() == "gophauth_password_hash_seconds" {
			help = f.GetHelp()
		}
	}
	require.NotEmpty(t, help)
	assert.NotContains(t, help, "waiting")
}
