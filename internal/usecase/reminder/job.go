// Package reminder envia os lembretes de 24h e 1h antes dos atendimentos.
package reminder

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	domain "github.com/BruksfildServices01/clinica-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/clinica-scheduler/internal/notify"
)

type Job struct {
	repo     domain.Repository
	notifier notify.Notifier
	log      *logrus.Logger
	now      func() time.Time
}

func NewJob(repo domain.Repository, notifier notify.Notifier, log *logrus.Logger) *Job {
	return &Job{repo: repo, notifier: notifier, log: log, now: time.Now}
}

var kindToType = map[domain.ReminderKind]notify.Type{
	domain.Reminder24h: notify.TypeReminder24,
	domain.Reminder1h:  notify.TypeReminder1h,
}

// Run faz uma varredura, empresa por empresa, e devolve quantos lembretes
// saíram. Falha de envio não marca o lembrete; a próxima execução tenta de novo.
func (j *Job) Run(ctx context.Context) (int, error) {
	now := j.now().UTC()
	until := now.Add(domain.ReminderHorizon)

	companies, err := j.repo.ListCompaniesWithAppointments(ctx, now, until)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, companyID := range companies {
		n, err := j.runCompany(ctx, companyID, now, until)
		sent += n
		if err != nil {
			j.log.WithField("company_id", companyID).WithError(err).Error("reminder sweep failed")
		}
	}
	return sent, nil
}

func (j *Job) runCompany(ctx context.Context, companyID string, now, until time.Time) (int, error) {
	appointments, err := j.repo.ListForPeriod(ctx, companyID, "", now, until)
	if err != nil {
		return 0, err
	}

	sent := 0
	for i := range appointments {
		ap := &appointments[i]

		kind, ok := domain.DueReminder(ap, now)
		if !ok {
			continue
		}

		fields := logrus.Fields{
			"company_id":     companyID,
			"appointment_id": ap.ID,
			"type":           kind,
		}

		if err := j.notifier.Notify(ctx, notify.EventFor(kindToType[kind], ap)); err != nil {
			j.log.WithFields(fields).WithError(err).Warn("reminder not sent")
			continue
		}

		if _, err := j.repo.Update(ctx, ap.ID, companyID, domain.MarkReminderSent(kind, now)); err != nil {
			j.log.WithFields(fields).WithError(err).Error("reminder sent but not marked")
			continue
		}
		sent++
	}
	return sent, nil
}

// Start agenda o job; execuções sobrepostas são puladas.
func Start(schedule string, job *Job) (*cron.Cron, error) {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))

	_, err := c.AddFunc(schedule, func() {
		sent, err := job.Run(context.Background())
		if err != nil {
			job.log.WithError(err).Error("reminder job failed")
			return
		}
		if sent > 0 {
			job.log.WithField("sent", sent).Info("reminders sent")
		}
	})
	if err != nil {
		return nil, err
	}

	c.Start()
	return c, nil
}
