package routes

import (
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/clinica-scheduler/internal/audit"
	"github.com/BruksfildServices01/clinica-scheduler/internal/config"
	domain "github.com/BruksfildServices01/clinica-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/clinica-scheduler/internal/infra/cache"
	infraRepo "github.com/BruksfildServices01/clinica-scheduler/internal/infra/repository"
	"github.com/BruksfildServices01/clinica-scheduler/internal/notify"
	"github.com/BruksfildServices01/clinica-scheduler/internal/storage"
)

// Infra reúne os singletons compartilhados por rotas e jobs.
type Infra struct {
	Repo     domain.Repository
	Audit    *audit.Dispatcher
	AuditLog *audit.Logger
	Notifier notify.Notifier
	Storage  storage.Driver

	redis *redis.Client
	kafka *notify.KafkaNotifier
}

func NewInfra(db *gorm.DB, cfg *config.Config, log *logrus.Logger) (*Infra, error) {
	in := &Infra{}

	// --------------------------------------------------
	// Repositório (+ cache Redis quando configurado)
	// --------------------------------------------------
	var repo domain.Repository = infraRepo.NewAppointmentGormRepository(db)
	if cfg.Redis.Addr != "" {
		in.redis = cache.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		repo = cache.NewRepository(repo, cache.NewRedisStore(in.redis), cfg.Redis.CacheTTL, log)
		log.WithField("addr", cfg.Redis.Addr).Info("schedule cache enabled")
	}
	in.Repo = repo

	// --------------------------------------------------
	// Auditoria assíncrona
	// --------------------------------------------------
	in.AuditLog = audit.New(db)
	in.Audit = audit.NewDispatcher(in.AuditLog, log)

	// --------------------------------------------------
	// Notificações: Kafka ou log
	// --------------------------------------------------
	if len(cfg.Kafka.Brokers) > 0 {
		in.kafka = notify.NewKafkaNotifier(cfg.Kafka.Brokers, cfg.Kafka.Topic, log)
		in.Notifier = in.kafka
	} else {
		in.Notifier = notify.NewLogNotifier(log)
	}

	// --------------------------------------------------
	// Storage dos relatórios
	// --------------------------------------------------
	driver, err := storage.NewDriver(cfg.Storage)
	if err != nil {
		return nil, err
	}
	in.Storage = driver

	return in, nil
}

// Close drena a auditoria e fecha as conexões externas.
func (in *Infra) Close() {
	in.Audit.Close()
	if in.kafka != nil {
		_ = in.kafka.Close()
	}
	if in.redis != nil {
		_ = in.redis.Close()
	}
}
