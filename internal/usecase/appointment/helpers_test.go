package appointment

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"

	"github.com/BruksfildServices01/clinica-scheduler/internal/db"
	"github.com/BruksfildServices01/clinica-scheduler/internal/domain/access"
	domain "github.com/BruksfildServices01/clinica-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/clinica-scheduler/internal/infra/repository"
	"github.com/BruksfildServices01/clinica-scheduler/internal/notify"
)

type recordingNotifier struct {
	mu     sync.Mutex
	events []notify.Event
}

func (n *recordingNotifier) Notify(_ context.Context, ev notify.Event) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, ev)
	return nil
}

func (n *recordingNotifier) count(t notify.Type) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	c := 0
	for _, ev := range n.events {
		if ev.Type == t {
			c++
		}
	}
	return c
}

type fixture struct {
	deps     Deps
	repo     domain.Repository
	notifier *recordingNotifier
}

func newFixture(t *testing.T) *fixture {
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

	log := logrus.New()
	log.SetOutput(io.Discard)

	repo := repository.NewAppointmentGormRepository(gdb)
	n := &recordingNotifier{}

	return &fixture{
		repo:     repo,
		notifier: n,
		deps: Deps{
			Repo:     repo,
			Notifier: n,
			Log:      log,
			Opts: Options{
				Timezone:     "UTC",
				BlocksOccupy: true,
				Now:          func() time.Time { return time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC) },
			},
		},
	}
}

func ptr[T any](v T) *T { return &v }

// at devolve 2024-01-15 hh:mm UTC.
func at(hh, mm int) time.Time {
	return time.Date(2024, 1, 15, hh, mm, 0, 0, time.UTC)
}

func ownerOf(company string) access.Principal {
	return access.NewPrincipal(access.Actor{UID: "u-owner", CompanyID: company, Role: access.RoleOwner, Timezone: "UTC"})
}

func proOf(company, professionalID string) access.Principal {
	return access.NewPrincipal(access.Actor{
		UID: "u-" + professionalID, CompanyID: company, Role: access.RolePro,
		ProfessionalID: professionalID, Timezone: "UTC",
	})
}

func booking(professionalID string, start, end time.Time) domain.BookingRequest {
	return domain.BookingRequest{
		ProfessionalID:    professionalID,
		ClientID:          "cl1",
		ServiceID:         "s1",
		Start:             start,
		End:               end,
		PriceCents:        ptr(int64(10000)),
		CommissionPercent: 30,
	}
}

func (f *fixture) create(t *testing.T, p access.Principal, req domain.BookingRequest) *CreateAppointmentResult {
	t.Helper()
	res, err := NewCreateAppointment(f.deps).Execute(context.Background(), p, CreateAppointmentInput{Booking: req})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	return res
}
