//go:build integration

package integration

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/joshu-sajeev/pingcrm/internal/storage/postgres"
)

func BenchmarkJobRepository_Insert(b *testing.B) {
	db, ctx := setupTestDB(b)
	repo := postgres.NewJobRepository(db)
	payload := json.RawMessage(`{"n":1}`)

	for b.Loop() {
		_, _ = repo.Insert(ctx, "echo", payload, time.Now().UTC())
	}
}

func BenchmarkJobRepository_Get(b *testing.B) {
	db, ctx := setupTestDB(b)
	repo := postgres.NewJobRepository(db)

	id, err := repo.Insert(ctx, "echo", json.RawMessage(`{}`), time.Now().UTC())
	if err != nil {
		b.Fatal(err)
	}

	for b.Loop() {
		_, _ = repo.Get(ctx, id)
	}
}

// BenchmarkJobRepository_ClaimAndComplete measures one full claim cycle
// against a table that always has work.
func BenchmarkJobRepository_ClaimAndComplete(b *testing.B) {
	db, ctx := setupTestDB(b)
	repo := postgres.NewJobRepository(db)
	payload := json.RawMessage(`{"n":1}`)

	for b.Loop() {
		if _, err := repo.Insert(ctx, "echo", payload, time.Now().UTC()); err != nil {
			b.Fatal(err)
		}
		job, err := repo.ClaimNext(ctx, "bench", time.Now().UTC())
		if err != nil || job == nil {
			b.Fatalf("claim: %v", err)
		}
		if err := repo.MarkSucceeded(ctx, job.ID); err != nil {
			b.Fatal(err)
		}
	}
}
