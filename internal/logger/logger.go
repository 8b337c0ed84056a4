package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// New monta o logger da aplicação: JSON em produção, texto no resto.
func New(production bool) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)

	if production {
		l.SetFormatter(&logrus.JSONFormatter{})
		l.SetLevel(logrus.InfoLevel)
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		l.SetLevel(logrus.DebugLevel)
	}

	return l
}
