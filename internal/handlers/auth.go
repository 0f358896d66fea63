package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/pr-poehali-dev/apartment-rental-moscow/db"
	"github.com/pr-poehali-dev/apartment-rental-moscow/internal/auth"
	"github.com/pr-poehali-dev/apartment-rental-moscow/internal/errs"
)

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func decodeCredentials(w http.ResponseWriter, r *http.Request) (credentials, error) {
	var c credentials
	if err := decodeJSON(w, r, &c); err != nil {
		return c, err
	}
	c.Username = strings.TrimSpace(c.Username)
	c.Password = strings.TrimSpace(c.Password)
	if c.Username == "" || c.Password == "" {
		return c, errs.NewBadRequestError("Username and password required")
	}
	return c, nil
}

// POST /api/auth - вход собственника.
// Токен не сохраняется: клиент сам предъявляет его вместе с owner_id.
func (h *Handler) ownerLogin(w http.ResponseWriter, r *http.Request) error {
	c, err := decodeCredentials(w, r)
	if err != nil {
		return err
	}

	owner, err := h.store.GetOwnerByUsername(r.Context(), c.Username)
	if errors.Is(err, db.ErrNotFound) {
		return errs.NewUnauthorizedError("Invalid credentials")
	}
	if err != nil {
		return err
	}
	if owner.PasswordHash == nil || !auth.CheckPassword(c.Password, *owner.PasswordHash) {
		return errs.NewUnauthorizedError("Invalid credentials")
	}
	// Неактивный получает 403 только после верного пароля
	if !owner.IsActive {
		return errs.NewForbiddenError("Account is disabled")
	}

	token, err := auth.NewSessionToken()
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"token":     token,
		"owner_id":  owner.ID,
		"full_name": owner.FullName,
	})
	return nil
}

// POST /api/auth-admin - вход администратора
func (h *Handler) adminLogin(w http.ResponseWriter, r *http.Request) error {
	c, err := decodeCredentials(w, r)
	if err != nil {
		return err
	}

	admin, err := h.store.GetAdminByUsername(r.Context(), c.Username)
	if errors.Is(err, db.ErrNotFound) {
		return errs.NewUnauthorizedError("Invalid credentials")
	}
	if err != nil {
		return err
	}
	if !auth.CheckPassword(c.Password, admin.PasswordHash) {
		return errs.NewUnauthorizedError("Invalid credentials")
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"admin": map[string]interface{}{
			"id":        admin.ID,
			"username":  admin.Username,
			"full_name": admin.FullName,
		},
	})
	return nil
}
