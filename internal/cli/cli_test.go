package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/joshu-sajeev/pingcrm/internal/mocks"
	"github.com/joshu-sajeev/pingcrm/internal/models"
	"github.com/joshu-sajeev/pingcrm/internal/queue"
	"github.com/joshu-sajeev/pingcrm/internal/storage/postgres"
	"github.com/joshu-sajeev/pingcrm/internal/storage/storagetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

var epoch = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type harness struct {
	t       *testing.T
	store   *postgres.JobRepository
	clock   *mocks.Clock
	backend *Backend
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db := storagetest.NewSQLite(t)
	clock := mocks.NewClock(epoch)
	store := postgres.NewJobRepository(db, postgres.WithClock(clock))

	return &harness{
		t:     t,
		store: store,
		clock: clock,
		backend: &Backend{
			Store: store,
			Clock: clock,
			Migrate: func(ctx context.Context) error {
				return postgres.Migrate(ctx, db)
			},
		},
	}
}

func (h *harness) run(args ...string) (string, error) {
	h.t.Helper()
	cmd := NewRootCmd(func(context.Context) (*Backend, error) { return h.backend, nil })
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func (h *harness) enqueue(kind, payload string) string {
	h.t.Helper()
	out, err := h.run("enqueue", kind, payload)
	require.NoError(h.t, err)
	return strings.TrimSpace(out)
}

func TestEnqueue(t *testing.T) {
	h := newHarness(t)

	id := h.enqueue("echo", `{"n":7}`)
	require.NotEmpty(t, id)

	job, err := h.store.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "echo", job.Kind)
	assert.Equal(t, models.JobStatusPending, job.Status)
	assert.JSONEq(t, `{"n":7}`, string(job.Payload))
	assert.True(t, job.AvailableAt.Equal(epoch))
}

func TestEnqueue_DefaultPayloadAndDelay(t *testing.T) {
	h := newHarness(t)

	out, err := h.run("enqueue", "my_job", "--delay", "90s")
	require.NoError(t, err)

	job, err := h.store.Get(context.Background(), strings.TrimSpace(out))
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(job.Payload))
	assert.True(t, job.AvailableAt.Equal(epoch.Add(90*time.Second)))
}

func TestEnqueue_Errors(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("enqueue", "echo", "{not json")
	var serr *queue.SerializationError
	assert.ErrorAs(t, err, &serr)

	_, err = h.run("enqueue", "echo", "{}", "--delay", "-5s")
	assert.Error(t, err)

	_, err = h.run("enqueue")
	assert.Error(t, err)
}

func TestGet(t *testing.T) {
	h := newHarness(t)
	id := h.enqueue("echo", `{"n":2}`)

	t.Run("json", func(t *testing.T) {
		out, err := h.run("get", id)
		require.NoError(t, err)

		var got map[string]any
		require.NoError(t, json.Unmarshal([]byte(out), &got))
		assert.Equal(t, id, got["id"])
		assert.Equal(t, "pending", got["status"])
	})

	t.Run("yaml", func(t *testing.T) {
		out, err := h.run("get", id, "-o", "yaml")
		require.NoError(t, err)

		var got map[string]any
		require.NoError(t, yaml.Unmarshal([]byte(out), &got))
		assert.Equal(t, id, got["id"])
		assert.Equal(t, "echo", got["kind"])
		assert.Equal(t, map[string]any{"n": 2}, got["payload"])
	})

	t.Run("bad format", func(t *testing.T) {
		_, err := h.run("get", id, "-o", "xml")
		assert.ErrorContains(t, err, "unknown output format")
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := h.run("get", "0190f1b2-0000-7000-8000-000000000000")
		assert.ErrorIs(t, err, queue.ErrNotFound)
	})
}

func TestList(t *testing.T) {
	h := newHarness(t)

	out, err := h.run("list")
	require.NoError(t, err)
	assert.Equal(t, "No jobs found.\n", out)

	first := h.enqueue("echo", `{"n":1}`)
	h.clock.Advance(time.Minute)
	second := h.enqueue("my_job", `{"n":1}`)
	h.clock.Advance(time.Hour)

	out, err = h.run("list")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "STATUS")
	assert.Contains(t, out, first)
	assert.Contains(t, out, second)
	assert.Contains(t, out, "1 hour ago")

	out, err = h.run("list", "--kind", "my_job", "-o", "json")
	require.NoError(t, err)
	var jobs []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &jobs))
	require.Len(t, jobs, 1)
	assert.Equal(t, second, jobs[0]["id"])

	_, err = h.run("list", "--status", "bogus")
	assert.ErrorContains(t, err, "invalid status")
}

func TestStats(t *testing.T) {
	h := newHarness(t)
	h.enqueue("echo", `{}`)
	h.enqueue("echo", `{}`)

	_, err := h.store.ClaimNext(context.Background(), "w1", h.clock.Now())
	require.NoError(t, err)

	out, err := h.run("stats")
	require.NoError(t, err)
	assert.Regexp(t, `pending\s+1`, out)
	assert.Regexp(t, `running\s+1`, out)
	assert.Regexp(t, `abandoned\s+0`, out)
	assert.Regexp(t, `total\s+2`, out)
}

func TestRequeueStale(t *testing.T) {
	h := newHarness(t)
	id := h.enqueue("echo", `{}`)

	_, err := h.store.ClaimNext(context.Background(), "w1", h.clock.Now())
	require.NoError(t, err)

	out, err := h.run("requeue-stale", "--older-than", "10m")
	require.NoError(t, err)
	assert.Equal(t, "requeued 0 job(s)\n", out)

	h.clock.Advance(11 * time.Minute)
	out, err = h.run("requeue-stale", "--older-than", "10m")
	require.NoError(t, err)
	assert.Equal(t, "requeued 1 job(s)\n", out)

	job, err := h.store.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusPending, job.Status)
}

func TestMigrate(t *testing.T) {
	h := newHarness(t)

	out, err := h.run("migrate")
	require.NoError(t, err)
	assert.Equal(t, "migrations applied\n", out)

	h.backend.Migrate = nil
	_, err = h.run("migrate")
	assert.ErrorIs(t, err, errNoMigrate)
}

func TestConnectorError(t *testing.T) {
	boom := errors.New("no database")
	cmd := NewRootCmd(func(context.Context) (*Backend, error) { return nil, boom })
	cmd.SetArgs([]string{"stats"})
	cmd.SetOut(&bytes.Buffer{})

	assert.ErrorIs(t, cmd.Execute(), boom)
}

func TestBackendClosedAfterRun(t *testing.T) {
	h := newHarness(t)
	closed := 0
	h.backend.Close = func() error { closed++; return nil }

	_, err := h.run("stats")
	require.NoError(t, err)
	assert.Equal(t, 1, closed)
}

func TestGet_MalformedIDSkipsStore(t *testing.T) {
	store := new(mocks.JobStoreMock)
	cmd := NewRootCmd(func(context.Context) (*Backend, error) {
		return &Backend{Store: store}, nil
	})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"get", "does-not-exist"})

	err := cmd.ExecuteContext(context.Background())
	assert.ErrorIs(t, err, queue.ErrNotFound)
	store.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestBackendClosedAfterFailedRun(t *testing.T) {
	h := newHarness(t)
	closed := 0
	h.backend.Close = func() error { closed++; return nil }

	_, err := h.run("list", "--status", "bogus")
	require.Error(t, err)
	assert.Equal(t, 1, closed)

	h.backend.Migrate = func(context.Context) error { return errors.New("locked") }
	_, err = h.run("migrate")
	assert.ErrorContains(t, err, "locked")
	assert.Equal(t, 2, closed)
}

func TestBackendCloseError(t *testing.T) {
	h := newHarness(t)
	h.backend.Close = func() error { return errors.New("close failed") }

	_, err := h.run("stats")
	assert.ErrorContains(t, err, "close backend: close failed")
}
