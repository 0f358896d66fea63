package handlers

import (
	"net/http"
	"strings"

	"github.com/pr-poehali-dev/apartment-rental-moscow/db"
	"github.com/pr-poehali-dev/apartment-rental-moscow/internal/auth"
	"github.com/pr-poehali-dev/apartment-rental-moscow/internal/errs"
	"github.com/pr-poehali-dev/apartment-rental-moscow/models"
)

func (h *Handler) adminRoutes() dispatcher {
	d := newDispatcher()
	d.handle(routeKey{Method: http.MethodGet, Action: "get_owners"}, h.getOwners)
	d.handle(routeKey{Method: http.MethodPost, Action: "create_owner"}, h.createOwner)
	d.handle(routeKey{Method: http.MethodPut, Action: "update_owner"}, h.updateOwner)
	d.handle(routeKey{Method: http.MethodGet, Action: "get_objects"}, h.getObjects)
	d.handle(routeKey{Method: http.MethodPost, Action: "create_object"}, h.createObject)
	d.handle(routeKey{Method: http.MethodPut, Action: "update_object"}, h.updateObject)
	d.handle(routeKey{Method: http.MethodGet, Action: "get_promotions"}, h.getPromotions)
	d.handle(routeKey{Method: http.MethodPost, Action: "create_promotion"}, h.createPromotion)
	d.handle(routeKey{Method: http.MethodPut, Action: "update_promotion"}, h.updatePromotion)
	return d
}

// AdminHandler обрабатывает /api/admin?action=...
func (h *Handler) AdminHandler(w http.ResponseWriter, r *http.Request) {
	key := routeKey{Method: r.Method, Action: r.URL.Query().Get("action")}
	if err := h.admin.serve(key, w, r); err != nil {
		h.writeError(w, r, err)
	}
}

// GET ?action=get_owners
func (h *Handler) getOwners(w http.ResponseWriter, r *http.Request) error {
	owners, err := h.store.ListOwners(r.Context())
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"owners": owners})
	return nil
}

// POST ?action=create_owner
func (h *Handler) createOwner(w http.ResponseWriter, r *http.Request) error {
	var in models.OwnerInput
	if err := decodeJSON(w, r, &in); err != nil {
		return err
	}
	in.Username = strings.TrimSpace(in.Username)
	in.Password = strings.TrimSpace(in.Password)
	in.FullName = strings.TrimSpace(in.FullName)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Telegram = strings.TrimSpace(in.Telegram)
	in.Email = strings.TrimSpace(in.Email)

	if err := h.validate.Struct(in); err != nil {
		return errs.NewBadRequestError("username, password and full_name required")
	}

	hash := auth.HashPassword(in.Password)
	owner := &models.Owner{
		Username:     &in.Username,
		PasswordHash: &hash,
		FullName:     in.FullName,
		Phone:        nonEmpty(in.Phone),
		Telegram:     nonEmpty(in.Telegram),
		Email:        nonEmpty(in.Email),
	}
	if err := h.store.CreateOwner(r.Context(), owner); err != nil {
		return err
	}
	writeJSON(w, http.StatusCreated, owner)
	return nil
}

// PUT ?action=update_owner&id=X
func (h *Handler) updateOwner(w http.ResponseWriter, r *http.Request) error {
	id, err := requireID(r, "id")
	if err != nil {
		return err
	}
	var patch models.OwnerPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		return err
	}
	// Пустой пароль не меняет хеш
	if patch.Password != nil && *patch.Password != "" {
		hash := auth.HashPassword(*patch.Password)
		patch.PasswordHash = &hash
	}
	if patch.Empty() {
		return errs.NewBadRequestError("No fields to update")
	}

	owner, err := h.store.UpdateOwner(r.Context(), id, patch)
	if err != nil {
		return notFoundAs(err, "Owner not found")
	}
	writeJSON(w, http.StatusOK, owner)
	return nil
}

// GET ?action=get_objects
func (h *Handler) getObjects(w http.ResponseWriter, r *http.Request) error {
	objects, err := h.store.ListProperties(r.Context())
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"objects": objects})
	return nil
}

// POST ?action=create_object
func (h *Handler) createObject(w http.ResponseWriter, r *http.Request) error {
	in, err := h.decodeProperty(w, r, true)
	if err != nil {
		return err
	}
	id, err := h.store.CreateProperty(r.Context(), in)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
	return nil
}

// PUT ?action=update_object&id=X
func (h *Handler) updateObject(w http.ResponseWriter, r *http.Request) error {
	id, err := requireID(r, "id")
	if err != nil {
		return err
	}
	mode := h.updateMode()
	in, err := h.decodeProperty(w, r, mode == db.UpdateReplace)
	if err != nil {
		return err
	}
	if err := h.store.UpdateProperty(r.Context(), id, in, mode); err != nil {
		return notFoundAs(err, "Object not found")
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	return nil
}

// GET ?action=get_promotions
func (h *Handler) getPromotions(w http.ResponseWriter, r *http.Request) error {
	promotions, err := h.store.ListPromotions(r.Context())
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"promotions": promotions})
	return nil
}

// POST ?action=create_promotion
func (h *Handler) createPromotion(w http.ResponseWriter, r *http.Request) error {
	var in models.PromotionInput
	if err := decodeJSON(w, r, &in); err != nil {
		return err
	}
	if in.Title == nil || strings.TrimSpace(*in.Title) == "" {
		return errs.NewBadRequestError("title required")
	}
	id, err := h.store.CreatePromotion(r.Context(), &in)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
	return nil
}

// PUT ?action=update_promotion&id=X
func (h *Handler) updatePromotion(w http.ResponseWriter, r *http.Request) error {
	id, err := requireID(r, "id")
	if err != nil {
		return err
	}
	var in models.PromotionInput
	if err := decodeJSON(w, r, &in); err != nil {
		return err
	}
	if err := h.store.UpdatePromotion(r.Context(), id, &in); err != nil {
		return notFoundAs(err, "Promotion not found")
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	return nil
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
