package appointment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/BruksfildServices01/clinica-scheduler/internal/domain/access"
	domain "github.com/BruksfildServices01/clinica-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/clinica-scheduler/internal/domain/finance"
	"github.com/BruksfildServices01/clinica-scheduler/internal/notify"
)

func TestBookConflictConfirmComplete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := ownerOf("c1")

	res := f.create(t, owner, booking("p1", at(10, 0), at(11, 0)))
	if len(res.Appointments) != 1 {
		t.Fatalf("expected one appointment, got %d", len(res.Appointments))
	}
	id := res.Appointments[0].ID
	if res.Appointments[0].Status != string(domain.StatusScheduled) {
		t.Fatalf("expected scheduled, got %s", res.Appointments[0].Status)
	}

	_, err := NewCreateAppointment(f.deps).Execute(ctx, owner, CreateAppointmentInput{
		Booking: booking("p1", at(10, 30), at(11, 30)),
	})
	var conflict *domain.ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if got := conflict.Occurrences[0].Conflicts[0].AppointmentID; got != id {
		t.Fatalf("conflict should name %s, got %s", id, got)
	}

	status := NewChangeStatus(f.deps)
	if _, err := status.Confirm(ctx, owner, id); err != nil {
		t.Fatalf("confirm: %v", err)
	}

	done, err := status.Complete(ctx, owner, id, domain.TransitionInput{
		PaidCents:     ptr(int64(10000)),
		PaymentMethod: "pix",
		ClientPresent: ptr(true),
	})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}

	line, ok := finance.Derive(done)
	if !ok {
		t.Fatalf("completed appointment must bear revenue")
	}
	if line.CommissionCents != 3000 || line.PayoutCents != 7000 || line.RevenueCents != 10000 {
		t.Fatalf("unexpected line %+v", line)
	}

	if f.notifier.count(notify.TypeScheduled) != 1 || f.notifier.count(notify.TypeConfirmed) != 1 {
		t.Fatalf("unexpected notifications %+v", f.notifier.events)
	}
}

func TestAdjacentBookingsDoNotConflict(t *testing.T) {
	f := newFixture(t)
	owner := ownerOf("c1")

	f.create(t, owner, booking("p1", at(10, 0), at(11, 0)))
	f.create(t, owner, booking("p1", at(11, 0), at(12, 0)))
	f.create(t, owner, booking("p2", at(10, 0), at(11, 0)))
}

func TestCanceledBookingFreesSlot(t *testing.T) {
	f := newFixture(t)
	owner := ownerOf("c1")

	res := f.create(t, owner, booking("p1", at(10, 0), at(11, 0)))
	if _, err := NewChangeStatus(f.deps).Cancel(context.Background(), owner, res.Appointments[0].ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	f.create(t, owner, booking("p1", at(10, 0), at(11, 0)))
}

func TestCreateReportsAllViolations(t *testing.T) {
	f := newFixture(t)

	req := booking("p1", at(11, 0), at(10, 0))
	req.ClientID = ""
	req.PriceCents = nil

	_, err := NewCreateAppointment(f.deps).Execute(context.Background(), ownerOf("c1"), CreateAppointmentInput{Booking: req})
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	for _, v := range []domain.Violation{
		domain.ViolationClientRequired,
		domain.ViolationPriceRequired,
		domain.ViolationInvalidTimeRange,
	} {
		if !verr.Has(v) {
			t.Fatalf("missing %s in %v", v, verr.Violations)
		}
	}
}

func TestProCannotBookForAnotherProfessional(t *testing.T) {
	f := newFixture(t)

	_, err := NewCreateAppointment(f.deps).Execute(context.Background(), proOf("c1", "p1"), CreateAppointmentInput{
		Booking: booking("p2", at(10, 0), at(11, 0)),
	})
	if !errors.Is(err, access.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}

	f.create(t, proOf("c1", "p1"), booking("p1", at(10, 0), at(11, 0)))
}

func TestTenantIsolation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res := f.create(t, ownerOf("c1"), booking("p1", at(10, 0), at(11, 0)))

	// mesmo horário em outra empresa não conflita
	f.create(t, ownerOf("c2"), booking("p1", at(10, 0), at(11, 0)))

	if _, err := NewGetAppointment(f.deps).Execute(ctx, ownerOf("c2"), res.Appointments[0].ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("cross-tenant read must look missing, got %v", err)
	}
	if _, err := NewChangeStatus(f.deps).Cancel(ctx, ownerOf("c2"), res.Appointments[0].ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("cross-tenant write must look missing, got %v", err)
	}
}

// ======================================================
// Recorrência
// ======================================================

func weekly(until time.Time) *domain.RecurrenceRequest {
	return &domain.RecurrenceRequest{Frequency: domain.FrequencyWeekly, EndsAt: &until}
}

func TestWeeklySeriesIsCreatedTogether(t *testing.T) {
	f := newFixture(t)

	req := booking("p1", at(10, 0), at(11, 0))
	req.Recurrence = weekly(time.Date(2024, 2, 5, 0, 0, 0, 0, time.UTC))

	res := f.create(t, ownerOf("c1"), req)
	if len(res.Appointments) != 4 {
		t.Fatalf("expected 4 occurrences, got %d", len(res.Appointments))
	}

	group := res.Appointments[0].RecurrenceGroupID
	for i, ap := range res.Appointments {
		if ap.RecurrenceGroupID == nil || *ap.RecurrenceGroupID != *group {
			t.Fatalf("occurrence %d outside the group", i)
		}
		if *ap.RecurrenceOrder != i {
			t.Fatalf("occurrence %d has order %d", i, *ap.RecurrenceOrder)
		}
	}

	// uma notificação para a série inteira
	if got := f.notifier.count(notify.TypeScheduled); got != 1 {
		t.Fatalf("expected 1 scheduled notification, got %d", got)
	}
}

func TestSeriesWithConflictIsRejectedWhole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := ownerOf("c1")

	f.create(t, owner, booking("p1", at(10, 0).AddDate(0, 0, 14), at(11, 0).AddDate(0, 0, 14)))

	req := booking("p1", at(10, 0), at(11, 0))
	req.Recurrence = weekly(time.Date(2024, 2, 5, 0, 0, 0, 0, time.UTC))

	_, err := NewCreateAppointment(f.deps).Execute(ctx, owner, CreateAppointmentInput{Booking: req})
	var conflict *domain.ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if len(conflict.Occurrences) != 1 || conflict.Occurrences[0].Order != 2 {
		t.Fatalf("expected occurrence 2 to conflict, got %+v", conflict.Occurrences)
	}

	list, err := f.repo.ListForPeriod(ctx, "c1", "p1", at(0, 0), at(0, 0).AddDate(0, 1, 0))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("rejected series must not be persisted, found %d rows", len(list))
	}

	res, err := NewCreateAppointment(f.deps).Execute(ctx, owner, CreateAppointmentInput{Booking: req, SkipConflicting: true})
	if err != nil {
		t.Fatalf("partial create: %v", err)
	}
	if len(res.Appointments) != 3 || len(res.Skipped) != 1 {
		t.Fatalf("expected 3 admitted and 1 skipped, got %d/%d", len(res.Appointments), len(res.Skipped))
	}
}

func TestRecurrenceTooFarIsRejected(t *testing.T) {
	f := newFixture(t)

	req := booking("p1", at(10, 0), at(11, 0))
	req.Recurrence = weekly(at(10, 0).AddDate(0, 0, 400))

	_, err := NewCreateAppointment(f.deps).Execute(context.Background(), ownerOf("c1"), CreateAppointmentInput{Booking: req})
	var verr *domain.ValidationError
	if !errors.As(err, &verr) || !verr.Has(domain.ViolationRecurrenceEndTooFar) {
		t.Fatalf("expected recurrence_end_too_far, got %v", err)
	}
}

// ======================================================
// Bloqueios
// ======================================================

func TestBlockOverlaysBookingAndOccupiesSlot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := ownerOf("c1")

	f.create(t, owner, booking("p1", at(10, 0), at(11, 0)))

	res := f.create(t, owner, domain.BookingRequest{
		ProfessionalID:   "p1",
		Start:            at(9, 0),
		End:              at(13, 0),
		IsBlock:          true,
		BlockScope:       domain.BlockScopeAll,
		BlockDescription: "Feriado",
	})
	block := res.Appointments[0]
	if block.ProfessionalID != domain.AllProfessionals || block.Status != string(domain.StatusBlocked) {
		t.Fatalf("unexpected block %+v", block)
	}
	if block.PriceCents != 0 || block.NotifyClient {
		t.Fatalf("blocks carry no price and no notification")
	}

	_, err := NewCreateAppointment(f.deps).Execute(ctx, owner, CreateAppointmentInput{
		Booking: booking("p2", at(12, 0), at(12, 30)),
	})
	var conflict *domain.ConflictError
	if !errors.As(err, &conflict) || !conflict.Occurrences[0].Conflicts[0].IsBlock {
		t.Fatalf("clinic-wide block must occupy p2's slot, got %v", err)
	}

	if _, err := NewChangeStatus(f.deps).Confirm(ctx, owner, block.ID); err == nil {
		t.Fatalf("blocks cannot change status")
	}
}

// ======================================================
// Pendentes
// ======================================================

func TestPendingIsApprovedThenConfirmed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := ownerOf("c1")

	req := booking("p1", at(10, 0), at(11, 0))
	req.Status = domain.StatusPending
	ap := f.create(t, owner, req).Appointments[0]

	if ap.Status != string(domain.StatusPending) {
		t.Fatalf("expected pending, got %s", ap.Status)
	}
	if got := f.notifier.count(notify.TypeScheduled); got != 0 {
		t.Fatalf("pending must not notify on create, got %d", got)
	}

	uc := NewChangeStatus(f.deps)

	if _, err := uc.Confirm(ctx, owner, ap.ID); err == nil {
		t.Fatalf("pending cannot jump to confirmed")
	}

	scheduled, err := uc.Schedule(ctx, owner, ap.ID)
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if scheduled.Status != string(domain.StatusScheduled) {
		t.Fatalf("expected scheduled, got %s", scheduled.Status)
	}
	if got := f.notifier.count(notify.TypeScheduled); got != 1 {
		t.Fatalf("approval should notify once, got %d", got)
	}

	confirmed, err := uc.Confirm(ctx, owner, ap.ID)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if confirmed.Status != string(domain.StatusConfirmed) || f.notifier.count(notify.TypeConfirmed) != 1 {
		t.Fatalf("expected confirmed with notification, got %s", confirmed.Status)
	}
}

func TestApprovingPendingChecksConflicts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := ownerOf("c1")

	req := booking("p1", at(10, 0), at(11, 0))
	req.Status = domain.StatusPending
	pending := f.create(t, owner, req).Appointments[0]

	// pendente não segura o horário
	taken := f.create(t, owner, booking("p1", at(10, 30), at(11, 30))).Appointments[0]

	_, err := NewChangeStatus(f.deps).Schedule(ctx, owner, pending.ID)
	var conflict *domain.ConflictError
	if !errors.As(err, &conflict) || conflict.Occurrences[0].Conflicts[0].AppointmentID != taken.ID {
		t.Fatalf("expected conflict with %s, got %v", taken.ID, err)
	}

	still, _ := f.repo.GetByID(ctx, pending.ID, "c1")
	if still.Status != string(domain.StatusPending) {
		t.Fatalf("failed approval must keep pending, got %s", still.Status)
	}
}

func TestCreateRejectsUnknownInitialStatus(t *testing.T) {
	f := newFixture(t)

	req := booking("p1", at(10, 0), at(11, 0))
	req.Status = domain.StatusCompleted

	_, err := NewCreateAppointment(f.deps).Execute(context.Background(), ownerOf("c1"), CreateAppointmentInput{Booking: req})
	var validation *domain.ValidationError
	if !errors.As(err, &validation) || !validation.Has(domain.ViolationInvalidStatus) {
		t.Fatalf("expected invalid_initial_status, got %v", err)
	}
}
