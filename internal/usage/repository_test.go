package usage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/park285/llm-kakao-bots/idea-llm-server-go/internal/config"
)

func newTestRepository(t *testing.T, now time.Time) *Repository {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatal(err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatal(err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	repo, err := NewRepositoryWithDB(context.Background(), db, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	repo.now = func() time.Time { return now }
	return repo
}

func TestRepositoryAccumulatesPerDayAndModel(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 5, 10, 12, 0, 0, 0, time.Local)
	repo := newTestRepository(t, now)

	steps := []struct {
		model  string
		input  int64
		output int64
	}{
		{"gpt-4", 100, 200},
		{"gpt-4", 10, 20},
		{"gpt-3.5-turbo", 50, 60},
	}
	for _, step := range steps {
		if err := repo.RecordUsage(ctx, step.model, step.input, step.output, 1, time.Time{}); err != nil {
			t.Fatalf("record failed: %v", err)
		}
	}

	daily, err := repo.GetDailyUsage(ctx, time.Time{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if daily == nil || daily.UsageDay != "2026-05-10" {
		t.Fatalf("unexpected daily usage: %+v", daily)
	}
	if daily.InputTokens != 160 || daily.OutputTokens != 280 || daily.RequestCount != 3 {
		t.Fatalf("unexpected totals: %+v", daily)
	}
	if len(daily.Models) != 2 || daily.Models[0].Model != "gpt-3.5-turbo" || daily.Models[1].RequestCount != 2 {
		t.Fatalf("unexpected model breakdown: %+v", daily.Models)
	}
}

func TestRepositoryRecentAndTotal(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 5, 10, 12, 0, 0, 0, time.Local)
	repo := newTestRepository(t, now)

	for offset := 0; offset < 5; offset++ {
		day := now.AddDate(0, 0, -offset)
		if err := repo.RecordUsage(ctx, "gpt-4", 10, 1, 1, day); err != nil {
			t.Fatalf("record failed: %v", err)
		}
	}

	recent, err := repo.GetRecentUsage(ctx, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recent) != 3 || recent[0].UsageDay != "2026-05-10" || recent[2].UsageDay != "2026-05-08" {
		t.Fatalf("unexpected recent usage: %+v", recent)
	}

	total, err := repo.GetTotalUsage(ctx, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total.InputTokens != 20 || total.RequestCount != 2 {
		t.Fatalf("unexpected total: %+v", total)
	}
	if len(total.Models) != 1 || total.Models[0].Model != "gpt-4" {
		t.Fatalf("unexpected model totals: %+v", total.Models)
	}
}

func TestRepositoryDailyMissing(t *testing.T) {
	repo := newTestRepository(t, time.Now())
	daily, err := repo.GetDailyUsage(context.Background(), time.Time{})
	if err != nil || daily != nil {
		t.Fatalf("expected nil usage, got %+v err=%v", daily, err)
	}
}

func TestRepositorySkipsEmptyRecord(t *testing.T) {
	repo := newTestRepository(t, time.Now())
	if err := repo.RecordUsage(context.Background(), "gpt-4", 0, 0, 0, time.Time{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	recent, err := repo.GetRecentUsage(context.Background(), 7)
	if err != nil || len(recent) != 0 {
		t.Fatalf("expected no rows, got %+v err=%v", recent, err)
	}
}

func TestRepositoryPing(t *testing.T) {
	repo := newTestRepository(t, time.Now())
	if err := repo.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected ping error: %v", err)
	}
}

func TestRepositoryDisabled(t *testing.T) {
	repo := NewRepository(&config.Config{}, nil)
	if repo.Enabled() {
		t.Fatalf("expected disabled repository")
	}
	_, err := repo.GetRecentUsage(context.Background(), 7)
	if !errors.Is(err, ErrDisabled) {
		t.Fatalf("expected ErrDisabled, got %v", err)
	}
}

func TestShouldFallbackToLocalhost(t *testing.T) {
	if !shouldFallbackToLocalhost(errors.New("dial tcp: lookup postgres: no such host"), "postgres") {
		t.Fatalf("expected fallback")
	}
	if shouldFallbackToLocalhost(errors.New("connection refused"), "postgres") {
		t.Fatalf("unexpected fallback")
	}
	if shouldFallbackToLocalhost(errors.New("no such host db"), "db") {
		t.Fatalf("fallback only applies to the compose host name")
	}
}
