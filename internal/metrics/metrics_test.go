package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/joshu-sajeev/pingcrm/internal/mocks"
	"github.com/joshu-sajeev/pingcrm/internal/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, reg *prometheus.Registry) string {
	t.Helper()

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func TestCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.JobEnqueued("echo")
	c.JobEnqueued("echo")
	c.JobClaimed("echo")
	c.JobSucceeded("echo", 150*time.Millisecond)
	c.JobRetried("my_job", time.Second)
	c.JobAbandoned("my_job", 2*time.Second)

	out := scrape(t, reg)
	assert.Contains(t, out, `queue_jobs_enqueued_total{kind="echo"} 2`)
	assert.Contains(t, out, `queue_jobs_claimed_total{kind="echo"} 1`)
	assert.Contains(t, out, `queue_jobs_succeeded_total{kind="echo"} 1`)
	assert.Contains(t, out, `queue_jobs_retried_total{kind="my_job"} 1`)
	assert.Contains(t, out, `queue_jobs_abandoned_total{kind="my_job"} 1`)
	assert.Contains(t, out, `queue_job_duration_seconds_count{kind="echo",outcome="succeeded"} 1`)
}

func TestNewCollector_DuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewCollector(reg)

	assert.Panics(t, func() { NewCollector(reg) })
}

func TestStatusCollector(t *testing.T) {
	store := new(mocks.JobStoreMock)
	store.On("CountByStatus", mock.Anything).Return(map[models.JobStatus]int64{
		models.JobStatusPending:   3,
		models.JobStatusAbandoned: 1,
	}, nil)

	reg := prometheus.NewRegistry()
	reg.MustRegister(NewStatusCollector(store))

	out := scrape(t, reg)
	assert.Contains(t, out, `queue_jobs{status="pending"} 3`)
	assert.Contains(t, out, `queue_jobs{status="abandoned"} 1`)
	assert.Contains(t, out, `queue_jobs{status="running"} 0`)
	store.AssertExpectations(t)
}

func TestStatusCollector_StoreError(t *testing.T) {
	store := new(mocks.JobStoreMock)
	store.On("CountByStatus", mock.Anything).Return(nil, errors.New("db down"))

	reg := prometheus.NewRegistry()
	reg.MustRegister(NewStatusCollector(store))

	_, err := reg.Gather()
	assert.Error(t, err)
}

func TestNewRegistry(t *testing.T) {
	reg := NewRegistry()
	NewCollector(reg)

	out := scrape(t, reg)
	assert.Contains(t, out, "go_goroutines")
}
