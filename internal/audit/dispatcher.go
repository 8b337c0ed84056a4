package audit

import (
	"sync"

	"github.com/sirupsen/logrus"
)

type Event struct {
	CompanyID string
	ActorUID  string
	Action    string
	Entity    string
	EntityID  string
	Diff      any
}

// Sink grava eventos de auditoria.
type Sink interface {
	Log(ev Event) error
}

type Dispatcher struct {
	sink  Sink
	log   *logrus.Logger
	queue chan Event

	once sync.Once
	done chan struct{}
}

func NewDispatcher(sink Sink, log *logrus.Logger) *Dispatcher {
	d := &Dispatcher{
		sink:  sink,
		log:   log,
		queue: make(chan Event, 100), // buffer seguro
		done:  make(chan struct{}),
	}

	go d.worker()
	return d
}

func (d *Dispatcher) worker() {
	defer close(d.done)

	for ev := range d.queue {
		if err := d.sink.Log(ev); err != nil {
			d.log.WithFields(logrus.Fields{
				"company_id": ev.CompanyID,
				"action":     ev.Action,
				"entity_id":  ev.EntityID,
			}).WithError(err).Error("audit write failed")
		}
	}
}

// Dispatch nunca bloqueia a requisição.
func (d *Dispatcher) Dispatch(ev Event) {
	select {
	case d.queue <- ev:
	default:
		// fila cheia → descartamos audit (nunca quebrar API)
		d.log.WithFields(logrus.Fields{
			"company_id": ev.CompanyID,
			"action":     ev.Action,
		}).Warn("audit queue full, dropping event")
	}
}

// Close drena a fila e espera o worker terminar.
func (d *Dispatcher) Close() {
	d.once.Do(func() { close(d.queue) })
	<-d.done
}
