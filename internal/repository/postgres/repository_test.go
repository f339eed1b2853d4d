package postgres

import (
	"context"
	"database/sql"
	"io/fs"
	"strings"
	"testing"
	"time"

	"github.com/optaimi/pulse/internal/domain/alert"
	"github.com/optaimi/pulse/internal/domain/dispatch"
	"github.com/optaimi/pulse/internal/domain/metric"
	"github.com/optaimi/pulse/internal/domain/settings"
	"github.com/optaimi/pulse/internal/domain/user"
	"github.com/optaimi/pulse/migrations"
)

// newTestDB opens an in-memory SQLite database and applies the real
// embedded migrations, so the SQL the repositories run is exercised against
// the same schema production uses.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	if err := RunMigrations(db, migrations.GetFS("sqlite")); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	return db
}

func testUser(t *testing.T, db *sql.DB, email string) *user.User {
	t.Helper()

	u := &user.User{Email: email, PasswordHash: "hash"}
	if err := NewUserRepository(db).Create(context.Background(), u); err != nil {
		t.Fatalf("Create() user error = %v", err)
	}
	if u.ID == 0 {
		t.Fatal("Create() did not set user ID")
	}
	return u
}

func TestAlertRepository_RoundTrip(t *testing.T) {
	db := newTestDB(t)
	repo := NewAlertRepository(db)
	ctx := context.Background()
	u := testUser(t, db, "owner@example.com")

	threshold := "0.8"
	rule := &alert.Rule{
		UserID:    u.ID,
		Kind:      alert.KindLatency,
		Model:     "gpt-4o-mini",
		Threshold: &threshold,
		Window:    metric.Window24h,
		Cadence:   alert.Cadence1h,
		Active:    true,
	}

	id, err := repo.Create(ctx, rule)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if id == 0 || rule.ID != id {
		t.Fatalf("Create() id = %d, rule.ID = %d, want matching non-zero", id, rule.ID)
	}

	got, err := repo.GetByID(ctx, u.ID, id)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Kind != alert.KindLatency || got.Window != metric.Window24h || got.Cadence != alert.Cadence1h {
		t.Errorf("GetByID() = %+v, want stored rule back", got)
	}
	if got.Threshold == nil || *got.Threshold != threshold {
		t.Errorf("GetByID() threshold = %v, want %q", got.Threshold, threshold)
	}

	got.Model = ""
	got.Active = false
	if err := repo.Update(ctx, got); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	active, err := repo.ListByUser(ctx, u.ID, alert.Filter{ActiveOnly: true})
	if err != nil {
		t.Fatalf("ListByUser() error = %v", err)
	}
	if len(active) != 0 {
		t.Errorf("ListByUser(active) = %d rules, want 0 after deactivation", len(active))
	}

	all, err := repo.ListByUser(ctx, u.ID, alert.Filter{})
	if err != nil {
		t.Fatalf("ListByUser() error = %v", err)
	}
	if len(all) != 1 || all[0].Model != "" {
		t.Errorf("ListByUser() = %+v, want the updated rule", all)
	}

	if err := repo.Delete(ctx, u.ID, id); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := repo.GetByID(ctx, u.ID, id); err == nil {
		t.Error("GetByID() after delete = nil error, want not found")
	}
}

func TestAlertRepository_ListActive(t *testing.T) {
	db := newTestDB(t)
	repo := NewAlertRepository(db)
	ctx := context.Background()
	u := testUser(t, db, "owner@example.com")

	for _, active := range []bool{true, false, true} {
		_, err := repo.Create(ctx, &alert.Rule{
			UserID: u.ID, Kind: alert.KindError, Window: metric.Window24h,
			Cadence: alert.Cadence1h, Active: active,
		})
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	rules, err := repo.ListActive(ctx)
	if err != nil {
		t.Fatalf("ListActive() error = %v", err)
	}
	if len(rules) != 2 {
		t.Errorf("ListActive() = %d rules, want 2", len(rules))
	}
}

func TestMetricRepository_RecentNewestFirst(t *testing.T) {
	db := newTestDB(t)
	repo := NewMetricRepository(db)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	latency := 0.5
	for _, age := range []time.Duration{3 * time.Hour, time.Hour, 2 * time.Hour} {
		s := &metric.Sample{Timestamp: now.Add(-age), Model: "gpt-4o-mini", LatencyS: &latency}
		if err := repo.Insert(ctx, s); err != nil {
			t.Fatalf("Insert() error = %v", err)
		}
	}
	other := &metric.Sample{Timestamp: now, Model: "deepseek-chat", LatencyS: &latency}
	if err := repo.Insert(ctx, other); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	samples, err := repo.Recent(ctx, "gpt-4o-mini", now.Add(-150*time.Minute), 10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(samples) != 2 {
		t.Fatalf("Recent() = %d samples, want 2", len(samples))
	}
	if !samples[0].Timestamp.After(samples[1].Timestamp) {
		t.Errorf("Recent() order = %v then %v, want newest first", samples[0].Timestamp, samples[1].Timestamp)
	}

	limited, err := repo.Recent(ctx, "", now.Add(-24*time.Hour), 1)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(limited) != 1 || limited[0].Model != "deepseek-chat" {
		t.Errorf("Recent(limit=1) = %+v, want the newest sample across models", limited)
	}

	models, err := repo.Models(ctx, now.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("Models() error = %v", err)
	}
	if len(models) != 2 {
		t.Errorf("Models() = %v, want both models", models)
	}
}

func TestDispatchRepository_LatestSince(t *testing.T) {
	db := newTestDB(t)
	repo := NewDispatchRepository(db)
	ctx := context.Background()
	u := testUser(t, db, "owner@example.com")

	alertID, err := NewAlertRepository(db).Create(ctx, &alert.Rule{
		UserID: u.ID, Kind: alert.KindError, Window: metric.Window24h,
		Cadence: alert.Cadence1h, Active: true,
	})
	if err != nil {
		t.Fatalf("Create() alert error = %v", err)
	}

	now := time.Now().UTC().Truncate(time.Second)
	for _, rec := range []*dispatch.Record{
		{UserID: u.ID, AlertID: alertID, Status: dispatch.StatusFailed, SentAt: now.Add(-2 * time.Hour)},
		{UserID: u.ID, AlertID: alertID, Status: dispatch.StatusSent, Payload: []byte(`{"alert_type":"error"}`), SentAt: now.Add(-time.Hour)},
	} {
		if err := repo.Create(ctx, rec); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if rec.ID == 0 {
			t.Fatal("Create() did not set record ID")
		}
	}

	latest, err := repo.LatestSince(ctx, u.ID, alertID, now.Add(-3*time.Hour))
	if err != nil {
		t.Fatalf("LatestSince() error = %v", err)
	}
	if latest == nil || latest.Status != dispatch.StatusSent {
		t.Fatalf("LatestSince() = %+v, want the most recent record", latest)
	}
	if string(latest.Payload) != `{"alert_type":"error"}` {
		t.Errorf("LatestSince() payload = %s, want stored payload back", latest.Payload)
	}

	none, err := repo.LatestSince(ctx, u.ID, alertID, now.Add(-30*time.Minute))
	if err != nil {
		t.Fatalf("LatestSince() error = %v", err)
	}
	if none != nil {
		t.Errorf("LatestSince() = %+v, want nil outside the window", none)
	}
}

func TestSettingsRepository_Upsert(t *testing.T) {
	db := newTestDB(t)
	repo := NewSettingsRepository(db)
	ctx := context.Background()
	u := testUser(t, db, "owner@example.com")

	none, err := repo.Get(ctx, u.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if none != nil {
		t.Fatalf("Get() = %+v, want nil before any upsert", none)
	}

	s := &settings.Settings{
		UserID:   u.ID,
		Currency: "EUR",
		QuietHours: &settings.QuietHours{
			Start: "22:00",
			End:   "06:00",
		},
	}
	if err := repo.Upsert(ctx, s); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	s.Currency = "USD"
	s.QuietHours = nil
	if err := repo.Upsert(ctx, s); err != nil {
		t.Fatalf("Upsert() again error = %v", err)
	}

	got, err := repo.Get(ctx, u.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got == nil || got.Currency != "USD" {
		t.Fatalf("Get() = %+v, want replaced settings", got)
	}
	if got.QuietHours != nil {
		t.Errorf("Get() quiet hours = %+v, want cleared", got.QuietHours)
	}
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	testUser(t, db, "owner@example.com")

	err := repo.Create(ctx, &user.User{Email: "owner@example.com", PasswordHash: "other"})
	if err == nil {
		t.Fatal("Create() duplicate email = nil error, want conflict")
	}
}

func TestMigrations_DialectsStayPortable(t *testing.T) {
	// lib/pq rejects AUTOINCREMENT and unquoted WINDOW; pin the DDL each
	// dialect ships so a merged migration cannot regress the other driver.
	for _, driver := range []string{"sqlite", "postgres"} {
		sub := migrations.GetFS(driver)
		entries, err := fs.ReadDir(sub, ".")
		if err != nil {
			t.Fatalf("ReadDir(%s) error = %v", driver, err)
		}
		if len(entries) == 0 {
			t.Fatalf("migrations for %s are empty", driver)
		}
		for _, entry := range entries {
			content, err := fs.ReadFile(sub, entry.Name())
			if err != nil {
				t.Fatalf("ReadFile(%s/%s) error = %v", driver, entry.Name(), err)
			}
			ddl := string(content)
			if driver == "postgres" && strings.Contains(ddl, "AUTOINCREMENT") {
				t.Errorf("%s/%s uses AUTOINCREMENT", driver, entry.Name())
			}
			if strings.Contains(ddl, " window ") {
				t.Errorf("%s/%s leaves the window column unquoted", driver, entry.Name())
			}
		}
	}
}
