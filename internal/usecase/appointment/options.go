package appointment

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/BruksfildServices01/clinica-scheduler/internal/audit"
	"github.com/BruksfildServices01/clinica-scheduler/internal/domain/access"
	domain "github.com/BruksfildServices01/clinica-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/clinica-scheduler/internal/models"
	"github.com/BruksfildServices01/clinica-scheduler/internal/notify"
	"github.com/BruksfildServices01/clinica-scheduler/internal/timezone"
)

type Options struct {
	// fuso padrão quando o token não traz um
	Timezone     string
	BlocksOccupy bool
	Now          func() time.Time
}

// Deps agrupa os colaboradores comuns dos casos de uso de agenda.
type Deps struct {
	Repo     domain.Repository
	Audit    *audit.Dispatcher
	Notifier notify.Notifier
	Log      *logrus.Logger
	Opts     Options
}

func (d Deps) now() time.Time {
	if d.Opts.Now != nil {
		return d.Opts.Now()
	}
	return time.Now()
}

func (d Deps) location(p access.Principal) *time.Location {
	if p.Timezone != "" {
		return timezone.Location(p.Timezone)
	}
	return timezone.Location(d.Opts.Timezone)
}

func (d Deps) checkOptions() domain.CheckOptions {
	return domain.CheckOptions{BlocksOccupy: d.Opts.BlocksOccupy}
}

func (d Deps) record(p access.Principal, action, entityID string, diff any) {
	if d.Audit == nil {
		return
	}
	d.Audit.Dispatch(audit.Event{
		CompanyID: p.CompanyID,
		ActorUID:  p.UID,
		Action:    action,
		Entity:    "appointment",
		EntityID:  entityID,
		Diff:      diff,
	})
}

// publish falha em silêncio: notificação nunca derruba a operação.
func (d Deps) publish(ctx context.Context, t notify.Type, ap *models.Appointment) {
	if d.Notifier == nil || domain.IsBlock(ap) || !ap.NotifyClient {
		return
	}
	if err := d.Notifier.Notify(ctx, notify.EventFor(t, ap)); err != nil {
		d.Log.WithFields(logrus.Fields{
			"company_id":     ap.CompanyID,
			"appointment_id": ap.ID,
			"type":           t,
		}).WithError(err).Warn("notification failed")
	}
}
