package audit

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/clinica-scheduler/internal/models"
)

type memorySink struct {
	mu     sync.Mutex
	events []Event
	fail   bool
}

func (s *memorySink) Log(ev Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("boom")
	}
	s.events = append(s.events, ev)
	return nil
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestDispatcherDeliversEvents(t *testing.T) {
	sink := &memorySink{}
	d := NewDispatcher(sink, quietLogger())

	for i := 0; i < 5; i++ {
		d.Dispatch(Event{CompanyID: "c1", Action: "appointment_created"})
	}
	d.Close()

	if len(sink.events) != 5 {
		t.Fatalf("expected 5 events, got %d", len(sink.events))
	}
}

func TestDispatcherSurvivesSinkErrors(t *testing.T) {
	d := NewDispatcher(&memorySink{fail: true}, quietLogger())
	d.Dispatch(Event{CompanyID: "c1", Action: "x"})
	d.Close()
	d.Close()
}

func TestLoggerPersistsDiff(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.AuditLog{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	l := New(db)
	err = l.Log(Event{
		CompanyID: "c1",
		ActorUID:  "u1",
		Action:    "appointment_status_changed",
		Entity:    "appointment",
		EntityID:  "a1",
		Diff:      map[string]string{"from": "scheduled", "to": "confirmed"},
	})
	if err != nil {
		t.Fatalf("log: %v", err)
	}

	var row models.AuditLog
	if err := db.First(&row).Error; err != nil {
		t.Fatalf("read back: %v", err)
	}
	if row.ActorUID != "u1" || row.EntityID != "a1" {
		t.Fatalf("unexpected row %+v", row)
	}
	if string(row.Diff) != `{"from":"scheduled","to":"confirmed"}` {
		t.Fatalf("unexpected diff %s", row.Diff)
	}
}

func TestLoggerListFiltersByCompany(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.AuditLog{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	l := New(db)
	for i, ev := range []Event{
		{CompanyID: "c1", ActorUID: "u1", Action: "appointment_created", Entity: "appointment", EntityID: "a1"},
		{CompanyID: "c1", ActorUID: "u2", Action: "appointment_status_changed", Entity: "appointment", EntityID: "a1"},
		{CompanyID: "c1", ActorUID: "u1", Action: "appointment_created", Entity: "appointment", EntityID: "a2"},
		{CompanyID: "c2", ActorUID: "u9", Action: "appointment_created", Entity: "appointment", EntityID: "b1"},
	} {
		if err := l.Log(ev); err != nil {
			t.Fatalf("log %d: %v", i, err)
		}
	}

	ctx := context.Background()

	logs, total, _, err := l.List(ctx, Filter{CompanyID: "c1"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 3 || len(logs) != 3 {
		t.Fatalf("expected 3 rows for c1, got total=%d len=%d", total, len(logs))
	}
	if logs[0].EntityID != "a2" {
		t.Fatalf("expected newest first, got %+v", logs[0])
	}

	logs, total, _, _ = l.List(ctx, Filter{CompanyID: "c1", EntityID: "a1", ActorUID: "u2"})
	if total != 1 || logs[0].Action != "appointment_status_changed" {
		t.Fatalf("unexpected filtered result %+v", logs)
	}

	logs, total, f, _ := l.List(ctx, Filter{CompanyID: "c1", Page: 2, Limit: 2})
	if total != 3 || len(logs) != 1 || f.Page != 2 || f.Limit != 2 {
		t.Fatalf("unexpected page: total=%d len=%d filter=%+v", total, len(logs), f)
	}

	_, total, _, _ = l.List(ctx, Filter{CompanyID: "c1", From: time.Now().Add(time.Hour)})
	if total != 0 {
		t.Fatalf("future window should be empty, got %d", total)
	}
}
