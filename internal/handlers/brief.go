package handlers

import (
	"net/http"

	"github.com/pr-poehali-dev/apartment-rental-moscow/internal/notify"
)

// POST /api/send-brief - заявка собственника уходит в Telegram
func (h *Handler) sendBrief(w http.ResponseWriter, r *http.Request) error {
	var brief notify.Brief
	if err := decodeJSON(w, r, &brief); err != nil {
		return err
	}
	if err := h.notifier.SendBrief(r.Context(), brief); err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	return nil
}

// GET /api/check-secrets - заданы ли секреты бота, без значений
func (h *Handler) checkSecrets(w http.ResponseWriter, r *http.Request) error {
	writeJSON(w, http.StatusOK, h.notifier.SecretsInfo())
	return nil
}
