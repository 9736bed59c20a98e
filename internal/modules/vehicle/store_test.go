// README: DB-backed vehicle store tests (conditional acquire + atomic rating folds).
package vehicle

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"cabswift/internal/modules/pricing"
	"cabswift/internal/modules/rating"
	"cabswift/internal/types"
)

func TestAddRatingRejectsOutOfRange(t *testing.T) {
	s := NewPGStore(nil)
	for _, stars := range []int{0, 6, -1} {
		if err := s.AddRating(context.Background(), "veh1", stars); err != rating.ErrInvalidRating {
			t.Errorf("AddRating(%d): expected ErrInvalidRating, got %v", stars, err)
		}
	}
}

func TestAcquireConcurrent(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	id := seedVehicle(t, store, weekSchedule())

	at := time.Date(2026, 3, 9, 10, 0, 0, 0, time.UTC) // Monday 10:00

	const callers = 6
	var wg sync.WaitGroup
	results := make(chan bool, callers)
	start := make(chan struct{})

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			ok, err := store.Acquire(ctx, id, at)
			if err != nil {
				t.Errorf("acquire: %v", err)
			}
			results <- ok
		}()
	}
	close(start)
	wg.Wait()
	close(results)

	success := 0
	for ok := range results {
		if ok {
			success++
		}
	}
	if success != 1 {
		t.Fatalf("expected exactly 1 successful acquire, got %d", success)
	}

	if err := store.Release(ctx, id); err != nil {
		t.Fatalf("release: %v", err)
	}
	ok, err := store.Acquire(ctx, id, at)
	if err != nil {
		t.Fatalf("re-acquire: %v", err)
	}
	if !ok {
		t.Fatal("acquire after release should succeed")
	}
}

func TestAcquireRespectsSchedule(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	sched := Schedule{Start: "08:00", End: "18:00"}
	sched.Days[time.Monday] = true
	id := seedVehicle(t, store, sched)

	cases := []struct {
		name string
		at   time.Time
		want bool
	}{
		{"monday inside hours", time.Date(2026, 3, 9, 9, 30, 0, 0, time.UTC), true},
		{"monday before hours", time.Date(2026, 3, 9, 7, 59, 0, 0, time.UTC), false},
		{"monday after hours", time.Date(2026, 3, 9, 18, 1, 0, 0, time.UTC), false},
		{"sunday", time.Date(2026, 3, 8, 10, 0, 0, 0, time.UTC), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ok, err := store.Acquire(ctx, id, tc.at)
			if err != nil {
				t.Fatalf("acquire: %v", err)
			}
			if ok != tc.want {
				t.Fatalf("acquire at %s = %v, want %v", tc.at, ok, tc.want)
			}
			if ok {
				if err := store.Release(ctx, id); err != nil {
					t.Fatalf("release: %v", err)
				}
			}
		})
	}
}

func TestAddRatingConcurrentFolds(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	id := seedVehicle(t, store, weekSchedule())

	const folds = 50
	var wg sync.WaitGroup
	start := make(chan struct{})

	for i := 0; i < folds; i++ {
		stars := 5
		if i%2 == 1 {
			stars = 4
		}
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			<-start
			if err := store.AddRating(ctx, id, n); err != nil {
				t.Errorf("add rating: %v", err)
			}
		}(stars)
	}
	close(start)
	wg.Wait()

	v, err := store.Get(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if v.Rating.Count != folds {
		t.Fatalf("rating count = %d after %d concurrent folds", v.Rating.Count, folds)
	}
	if v.Rating.Breakdown[4] != 25 || v.Rating.Breakdown[3] != 25 {
		t.Errorf("breakdown = %v, want 25 fours and 25 fives", v.Rating.Breakdown)
	}
	if v.Rating.Average != 4.5 {
		t.Errorf("average = %v, want 4.5", v.Rating.Average)
	}
}

func weekSchedule() Schedule {
	s := Schedule{Start: "00:00", End: "23:59"}
	for d := 0; d < 7; d++ {
		s.Days[d] = true
	}
	return s
}

func seedVehicle(t *testing.T, store *PGStore, sched Schedule) types.ID {
	t.Helper()
	v := &Vehicle{
		ID:             newID(),
		DriverID:       "drv_store",
		PlanRef:        pricing.PlanRef{Category: pricing.CategoryCar, VehicleType: "sedan", Model: "dzire"},
		RegistrationNo: "KA01AB1234",
		SeatCount:      4,
		IsActive:       true,
		IsVerified:     true,
		ApprovalStatus: ApprovalApproved,
		Pricing: pricing.Snapshot{
			OneWay: &pricing.DistanceRates{Upto50: 14, Upto100: 12, Upto150: 10},
		},
		Schedule:  sched,
		CreatedAt: time.Now(),
	}
	if err := store.Create(context.Background(), v); err != nil {
		t.Fatalf("seed vehicle: %v", err)
	}
	return v.ID
}

func setupTestStore(t *testing.T) *PGStore {
	t.Helper()

	dsn := os.Getenv("CABSWIFT_TEST_DSN")
	if dsn == "" {
		t.Skip("CABSWIFT_TEST_DSN not set; skipping DB-backed store tests")
	}

	ctx := context.Background()
	db, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := applyMigration(ctx, db); err != nil {
		t.Fatalf("apply migration: %v", err)
	}

	if _, err := db.Exec(ctx, "TRUNCATE TABLE booking_state_events, bookings, vehicles"); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}

	return NewPGStore(db)
}

func applyMigration(ctx context.Context, db *pgxpool.Pool) error {
	root, err := repoRoot()
	if err != nil {
		return err
	}
	content, err := os.ReadFile(filepath.Join(root, "migrations", "0001_init.sql"))
	if err != nil {
		return err
	}
	cleaned := stripSQLComments(string(content))
	for _, stmt := range splitSQL(cleaned) {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func repoRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for i := 0; i < 6; i++ {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", os.ErrNotExist
}

func stripSQLComments(input string) string {
	var b strings.Builder
	scanner := bufio.NewScanner(strings.NewReader(input))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "--") {
			continue
		}
		b.WriteString(scanner.Text())
		b.WriteString("\n")
	}
	return b.String()
}

func splitSQL(input string) []string {
	parts := strings.Split(input, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		stmt := strings.TrimSpace(p)
		if stmt == "" {
			continue
		}
		out = append(out, stmt)
	}
	return out
}
