package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/driver/sqlite"

	"github.com/BruksfildServices01/clinica-scheduler/internal/db"
	domain "github.com/BruksfildServices01/clinica-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/clinica-scheduler/internal/models"
)

func newRepo(t *testing.T) *AppointmentGormRepository {
	t.Helper()

	gdb, err := db.Open(sqlite.Open(":memory:"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, _ := gdb.DB()
	sqlDB.SetMaxOpenConns(1)

	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewAppointmentGormRepository(gdb)
}

func at(hh int) time.Time {
	return time.Date(2024, 1, 15, hh, 0, 0, 0, time.UTC)
}

func row(company, professional string, from, to int, status domain.Status) models.Appointment {
	return models.Appointment{
		CompanyID:      company,
		ProfessionalID: professional,
		ClientID:       "cl1",
		ServiceID:      "s1",
		Start:          at(from),
		End:            at(to),
		PriceCents:     10000,
		Status:         string(status),
	}
}

func TestInsertAssignsIDs(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()

	single := row("c1", "p1", 8, 9, domain.StatusScheduled)
	if err := r.Insert(ctx, &single); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if single.ID == "" {
		t.Fatalf("expected generated id")
	}

	many := []models.Appointment{
		row("c1", "p1", 9, 10, domain.StatusScheduled),
		row("c1", "p1", 10, 11, domain.StatusScheduled),
	}
	if err := r.InsertMany(ctx, many); err != nil {
		t.Fatalf("insert many: %v", err)
	}
	if many[0].ID == "" || many[1].ID == "" || many[0].ID == many[1].ID {
		t.Fatalf("expected distinct ids, got %q %q", many[0].ID, many[1].ID)
	}
}

func TestFindActiveIsHalfOpenAndTenantScoped(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()

	rows := []models.Appointment{
		row("c1", "p1", 9, 10, domain.StatusScheduled),
		row("c1", "p1", 10, 11, domain.StatusConfirmed),
		row("c1", "p1", 11, 12, domain.StatusScheduled),
		row("c1", "p1", 10, 11, domain.StatusCanceled),
		row("c1", "p2", 10, 11, domain.StatusScheduled),
		row("c2", "p1", 10, 11, domain.StatusScheduled),
	}
	block := row("c1", domain.AllProfessionals, 10, 11, domain.StatusBlocked)
	block.IsBlock = true
	rows = append(rows, block)

	if err := r.InsertMany(ctx, rows); err != nil {
		t.Fatalf("seed: %v", err)
	}

	got, err := r.FindActiveByProfessionalInRange(ctx, "c1", "p1", at(10), at(11))
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	// 10-11 confirmado + bloqueio geral; vizinhos 9-10 e 11-12 não tocam
	if len(got) != 2 {
		t.Fatalf("expected 2 rows, got %d: %+v", len(got), got)
	}
	for _, ap := range got {
		if ap.CompanyID != "c1" {
			t.Fatalf("leaked row from %s", ap.CompanyID)
		}
	}
}

func TestListOverlappingSeesRecordsStartedBefore(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()

	// bloqueio de 14/01 00:00 a 17/01 00:00
	block := row("c1", "p1", 0, 0, domain.StatusBlocked)
	block.IsBlock = true
	block.Start = time.Date(2024, 1, 14, 0, 0, 0, 0, time.UTC)
	block.End = time.Date(2024, 1, 17, 0, 0, 0, 0, time.UTC)

	before := row("c1", "p1", 0, 0, domain.StatusScheduled)
	before.Start = time.Date(2024, 1, 14, 22, 0, 0, 0, time.UTC)
	before.End = time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	rows := []models.Appointment{block, before, row("c1", "p1", 10, 11, domain.StatusScheduled)}
	if err := r.InsertMany(ctx, rows); err != nil {
		t.Fatalf("seed: %v", err)
	}

	dayStart := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.AddDate(0, 0, 1)

	got, err := r.ListOverlapping(ctx, "c1", "p1", dayStart, dayEnd)
	if err != nil {
		t.Fatalf("list overlapping: %v", err)
	}
	// bloqueio + 10-11; o das 22h termina exatamente à meia-noite
	if len(got) != 2 || !got[0].IsBlock {
		t.Fatalf("expected block and 10-11, got %+v", got)
	}

	byStart, err := r.ListForPeriod(ctx, "c1", "p1", dayStart, dayEnd)
	if err != nil {
		t.Fatalf("list for period: %v", err)
	}
	if len(byStart) != 1 {
		t.Fatalf("start-in-range read should only see 10-11, got %d", len(byStart))
	}
}

func TestUpdateIsTenantScopedAndKeepsCompany(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()

	ap := row("c1", "p1", 10, 11, domain.StatusScheduled)
	if err := r.Insert(ctx, &ap); err != nil {
		t.Fatalf("insert: %v", err)
	}

	if _, err := r.Update(ctx, ap.ID, "c2", domain.Patch{domain.ColNotes: "x"}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found for other tenant, got %v", err)
	}

	updated, err := r.Update(ctx, ap.ID, "c1", domain.Patch{
		"company_id":    "c2",
		domain.ColNotes: "primeira consulta",
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.CompanyID != "c1" || updated.Notes != "primeira consulta" {
		t.Fatalf("unexpected row %+v", updated)
	}

	if err := r.DeleteByID(ctx, ap.ID, "c2"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found on cross-tenant delete, got %v", err)
	}
	if _, err := r.GetByID(ctx, "missing", "c1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSeriesQueries(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()

	group := "g-1"
	var rows []models.Appointment
	for i := 0; i < 3; i++ {
		order := i
		ap := row("c1", "p1", 8+i, 9+i, domain.StatusScheduled)
		ap.RecurrenceGroupID = &group
		ap.RecurrenceOrder = &order
		rows = append(rows, ap)
	}
	if err := r.InsertMany(ctx, rows); err != nil {
		t.Fatalf("seed: %v", err)
	}

	members, err := r.ListByRecurrenceGroup(ctx, group, "c1")
	if err != nil || len(members) != 3 || *members[2].RecurrenceOrder != 2 {
		t.Fatalf("unexpected members %+v (%v)", members, err)
	}

	if n, _ := r.DeleteByRecurrenceGroup(ctx, group, "c2"); n != 0 {
		t.Fatalf("other tenant deleted %d rows", n)
	}
	n, err := r.DeleteByRecurrenceGroup(ctx, group, "c1")
	if err != nil || n != 3 {
		t.Fatalf("expected 3 deleted, got %d (%v)", n, err)
	}
}

func TestListCompaniesWithAppointments(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()

	if err := r.InsertMany(ctx, []models.Appointment{
		row("c2", "p1", 10, 11, domain.StatusScheduled),
		row("c1", "p1", 12, 13, domain.StatusScheduled),
		row("c1", "p2", 12, 13, domain.StatusScheduled),
		row("c3", "p1", 20, 21, domain.StatusScheduled),
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	ids, err := r.ListCompaniesWithAppointments(ctx, at(9), at(14))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(ids) != 2 || ids[0] != "c1" || ids[1] != "c2" {
		t.Fatalf("unexpected companies %v", ids)
	}
}

func TestSaveWorkingHoursUpserts(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()

	wh := &models.WorkingHours{CompanyID: "c1", ProfessionalID: "p1", Weekday: 1, Active: true, StartTime: "09:00", EndTime: "18:00"}
	if err := r.SaveWorkingHours(ctx, wh); err != nil {
		t.Fatalf("save: %v", err)
	}
	again := &models.WorkingHours{CompanyID: "c1", ProfessionalID: "p1", Weekday: 1, Active: true, StartTime: "10:00", EndTime: "16:00"}
	if err := r.SaveWorkingHours(ctx, again); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	list, err := r.ListWorkingHours(ctx, "c1", "p1")
	if err != nil || len(list) != 1 || list[0].StartTime != "10:00" {
		t.Fatalf("expected single updated row, got %+v (%v)", list, err)
	}

	if _, err := r.GetWorkingHours(ctx, "c1", "p1", 2); !errors.Is(err, domain.ErrWorkingHoursNotFound) {
		t.Fatalf("expected working hours not found, got %v", err)
	}
}

func TestWithProfessionalLockRollsBack(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()

	boom := errors.New("boom")
	err := r.WithProfessionalLock(ctx, "c1", "p1", func(tx domain.Repository) error {
		ap := row("c1", "p1", 10, 11, domain.StatusScheduled)
		if err := tx.Insert(ctx, &ap); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	list, _ := r.ListForPeriod(ctx, "c1", "", at(0), at(23))
	if len(list) != 0 {
		t.Fatalf("insert must be rolled back, found %d", len(list))
	}
}
