package appointment

import (
	"testing"
	"time"

	"github.com/BruksfildServices01/clinica-scheduler/internal/models"
)

func TestDueReminder(t *testing.T) {
	now := date(2024, 1, 14, 10, 0)

	ap := &models.Appointment{
		Status:       string(StatusScheduled),
		NotifyClient: true,
		Start:        now.Add(24 * time.Hour),
		End:          now.Add(25 * time.Hour),
	}

	kind, ok := DueReminder(ap, now)
	if !ok || kind != Reminder24h {
		t.Fatalf("expected 24h reminder, got %q %v", kind, ok)
	}

	sent := now
	ap.Reminder24hSentAt = &sent
	if _, ok := DueReminder(ap, now); ok {
		t.Fatalf("24h reminder must be sent once")
	}

	ap.Start = now.Add(time.Hour)
	if kind, ok := DueReminder(ap, now); !ok || kind != Reminder1h {
		t.Fatalf("expected 1h reminder, got %q %v", kind, ok)
	}

	ap.Start = now.Add(5 * time.Hour)
	if _, ok := DueReminder(ap, now); ok {
		t.Fatalf("no reminder outside windows")
	}
}

func TestDueReminderSkipsBlocksAndOptOut(t *testing.T) {
	now := date(2024, 1, 14, 10, 0)
	start := now.Add(time.Hour)

	cases := []*models.Appointment{
		{Status: string(StatusBlocked), IsBlock: true, NotifyClient: true, Start: start},
		{Status: string(StatusScheduled), NotifyClient: false, Start: start},
		{Status: string(StatusCanceled), NotifyClient: true, Start: start},
		{Status: string(StatusScheduled), NotifyClient: true, Start: now.Add(-time.Hour)},
	}

	for i, ap := range cases {
		if _, ok := DueReminder(ap, now); ok {
			t.Fatalf("case %d: no reminder expected", i)
		}
	}
}
