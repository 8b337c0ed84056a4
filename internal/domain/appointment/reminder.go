package appointment

import (
	"time"

	"github.com/BruksfildServices01/clinica-scheduler/internal/models"
)

type ReminderKind string

const (
	Reminder24h ReminderKind = "lembrete_24h"
	Reminder1h  ReminderKind = "lembrete_1h"
)

// Janelas em minutos até o início.
var reminderWindows = []struct {
	kind     ReminderKind
	min, max float64
}{
	{Reminder24h, 1380, 1500},
	{Reminder1h, 30, 90},
}

// ReminderHorizon é o quanto à frente o job precisa olhar.
const ReminderHorizon = 1500 * time.Minute

// DueReminder devolve o lembrete que deve sair agora, se houver.
func DueReminder(ap *models.Appointment, now time.Time) (ReminderKind, bool) {
	if IsBlock(ap) || !ap.NotifyClient || !IsOccupying(ap, CheckOptions{}) {
		return "", false
	}

	minutes := ap.Start.Sub(now).Minutes()
	if minutes <= 0 {
		return "", false
	}

	for _, w := range reminderWindows {
		if minutes < w.min || minutes > w.max {
			continue
		}
		if w.kind == Reminder24h && ap.Reminder24hSentAt == nil {
			return w.kind, true
		}
		if w.kind == Reminder1h && ap.Reminder1hSentAt == nil {
			return w.kind, true
		}
	}
	return "", false
}

// MarkReminderSent monta o patch que registra o envio.
func MarkReminderSent(kind ReminderKind, now time.Time) Patch {
	if kind == Reminder24h {
		return Patch{ColReminder24hSentAt: now}
	}
	return Patch{ColReminder1hSentAt: now}
}
