package handler

import (
	"net/http"

	"pentrypal-go/internal/domain/session"
	"pentrypal-go/internal/domain/shopping"
	"pentrypal-go/pkg/logger"
)

type Handlers struct {
	Lists    *shopping.Service
	Sessions *session.Manager
	log      logger.Logger
}

func New(lists *shopping.Service, sessions *session.Manager, log logger.Logger) *Handlers {
	return &Handlers{
		Lists:    lists,
		Sessions: sessions,
		log:      log,
	}
}

func (h *Handlers) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
