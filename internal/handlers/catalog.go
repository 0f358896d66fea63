package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/pr-poehali-dev/apartment-rental-moscow/db"
	"github.com/pr-poehali-dev/apartment-rental-moscow/internal/config"
	"github.com/pr-poehali-dev/apartment-rental-moscow/internal/errs"
	"github.com/pr-poehali-dev/apartment-rental-moscow/models"
)

const (
	entityHotels = "hotels"
	entityRooms  = "rooms"
	entityOwners = "owners"
	entityStats  = "stats"
)

func (h *Handler) catalogRoutes() dispatcher {
	d := newDispatcher()

	d.handle(routeKey{Method: http.MethodGet, Entity: entityHotels}, h.listProperties)
	d.handle(routeKey{Method: http.MethodGet, Entity: entityHotels, WithID: true}, h.getProperty)
	d.handle(routeKey{Method: http.MethodPost, Entity: entityHotels}, h.createProperty)
	d.handle(routeKey{Method: http.MethodPut, Entity: entityHotels, WithID: true}, h.updateProperty)
	d.handle(routeKey{Method: http.MethodDelete, Entity: entityHotels, WithID: true}, h.archiveProperty)
	d.handle(routeKey{Method: http.MethodPut, Entity: entityHotels, Action: "publish", WithID: true},
		h.toggleProperty(db.FlagPublished))
	d.handle(routeKey{Method: http.MethodPut, Entity: entityHotels, Action: "archive", WithID: true},
		h.toggleProperty(db.FlagArchived))

	d.handle(routeKey{Method: http.MethodGet, Entity: entityRooms, WithID: true}, h.getRoom)
	d.handle(routeKey{Method: http.MethodPost, Entity: entityRooms}, h.createRoom)
	d.handle(routeKey{Method: http.MethodPut, Entity: entityRooms, WithID: true}, h.updateRoom)
	d.handle(routeKey{Method: http.MethodDelete, Entity: entityRooms, WithID: true}, h.deleteRoom)
	d.handle(routeKey{Method: http.MethodPut, Entity: entityRooms, Action: "publish", WithID: true},
		h.toggleRoom(db.FlagPublished))
	d.handle(routeKey{Method: http.MethodPut, Entity: entityRooms, Action: "archive", WithID: true},
		h.toggleRoom(db.FlagArchived))

	d.handle(routeKey{Method: http.MethodGet, Entity: entityOwners}, h.listCatalogOwners)
	d.handle(routeKey{Method: http.MethodPost, Entity: entityOwners}, h.createCatalogOwner)

	d.handle(routeKey{Method: http.MethodPost, Entity: entityStats, Action: string(db.StatView), WithID: true},
		h.recordStat(db.StatView))
	d.handle(routeKey{Method: http.MethodPost, Entity: entityStats, Action: string(db.StatClick), WithID: true},
		h.recordStat(db.StatClick))
	return d
}

// CatalogHandler обрабатывает /api/catalog?entity=...&id=...&action=...
func (h *Handler) CatalogHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	entity := q.Get("entity")
	if entity == "" {
		entity = entityHotels
	}
	key := routeKey{
		Method: r.Method,
		Entity: entity,
		Action: q.Get("action"),
		WithID: strings.TrimSpace(q.Get("id")) != "",
	}
	if err := h.catalog.serve(key, w, r); err != nil {
		h.writeError(w, r, err)
	}
}

func (h *Handler) updateMode() db.UpdateMode {
	if h.cfg != nil && h.cfg.CatalogUpdateMode == config.UpdateModeReplace {
		return db.UpdateReplace
	}
	return db.UpdatePatch
}

// decodeProperty читает тело объекта; requireName - имя обязательно (создание, полная замена).
func (h *Handler) decodeProperty(w http.ResponseWriter, r *http.Request, requireName bool) (*models.PropertyInput, error) {
	in := &models.PropertyInput{}
	if err := decodeJSON(w, r, in); err != nil {
		return nil, err
	}
	if requireName && (in.Name == nil || strings.TrimSpace(*in.Name) == "") {
		return nil, errs.NewBadRequestError("name required")
	}
	for i := range in.Rooms {
		if err := h.validate.Struct(in.Rooms[i]); err != nil {
			return nil, errs.ValidationError(err)
		}
	}
	return in, nil
}

// GET ?entity=hotels
func (h *Handler) listProperties(w http.ResponseWriter, r *http.Request) error {
	properties, err := h.store.ListProperties(r.Context())
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, properties)
	return nil
}

// GET ?entity=hotels&id=X
func (h *Handler) getProperty(w http.ResponseWriter, r *http.Request) error {
	id, err := requireID(r, "id")
	if err != nil {
		return err
	}
	property, err := h.store.GetProperty(r.Context(), id)
	if err != nil {
		return notFoundAs(err, "Hotel not found")
	}
	if property.Rooms == nil {
		property.Rooms = []models.Room{}
	}
	writeJSON(w, http.StatusOK, property)
	return nil
}

// POST ?entity=hotels
func (h *Handler) createProperty(w http.ResponseWriter, r *http.Request) error {
	in, err := h.decodeProperty(w, r, true)
	if err != nil {
		return err
	}
	id, err := h.store.CreateProperty(r.Context(), in)
	if err != nil {
		return err
	}
	property, err := h.store.GetProperty(r.Context(), id)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusCreated, property)
	return nil
}

// PUT ?entity=hotels&id=X
func (h *Handler) updateProperty(w http.ResponseWriter, r *http.Request) error {
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
		return notFoundAs(err, "Hotel not found")
	}
	property, err := h.store.GetProperty(r.Context(), id)
	if err != nil {
		return notFoundAs(err, "Hotel not found")
	}
	writeJSON(w, http.StatusOK, property)
	return nil
}

// DELETE ?entity=hotels&id=X - объект только архивируется
func (h *Handler) archiveProperty(w http.ResponseWriter, r *http.Request) error {
	id, err := requireID(r, "id")
	if err != nil {
		return err
	}
	archived := true
	if _, err := h.store.TogglePropertyFlag(r.Context(), id, db.FlagArchived, &archived); err != nil {
		return notFoundAs(err, "Hotel not found")
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Property archived"})
	return nil
}

// flagBody: {"value": true|false}; пустое тело - переключить
type flagBody struct {
	Value *bool `json:"value"`
}

// PUT ?entity=hotels&id=X&action=publish|archive
func (h *Handler) toggleProperty(flag db.Flag) handlerFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		return h.toggle(w, r, flag, h.store.TogglePropertyFlag, "Hotel not found")
	}
}

// PUT ?entity=rooms&id=X&action=publish|archive
func (h *Handler) toggleRoom(flag db.Flag) handlerFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		return h.toggle(w, r, flag, h.store.ToggleRoomFlag, "Room not found")
	}
}

type toggleFunc func(ctx context.Context, id int64, flag db.Flag, value *bool) (bool, error)

func (h *Handler) toggle(w http.ResponseWriter, r *http.Request, flag db.Flag, fn toggleFunc, notFoundMsg string) error {
	id, err := requireID(r, "id")
	if err != nil {
		return err
	}
	var body flagBody
	if err := decodeJSON(w, r, &body); err != nil {
		return err
	}
	value, err := fn(r.Context(), id, flag, body.Value)
	if err != nil {
		return notFoundAs(err, notFoundMsg)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"id": id, string(flag): value})
	return nil
}

// GET ?entity=rooms&id=X
func (h *Handler) getRoom(w http.ResponseWriter, r *http.Request) error {
	id, err := requireID(r, "id")
	if err != nil {
		return err
	}
	room, err := h.store.GetRoom(r.Context(), id)
	if err != nil {
		return notFoundAs(err, "Room not found")
	}
	writeJSON(w, http.StatusOK, room)
	return nil
}

// POST ?entity=rooms
func (h *Handler) createRoom(w http.ResponseWriter, r *http.Request) error {
	var in models.RoomInput
	if err := decodeJSON(w, r, &in); err != nil {
		return err
	}
	if in.ObjectID <= 0 {
		return errs.NewBadRequestError("object_id required")
	}
	if err := h.validate.Struct(in); err != nil {
		return errs.ValidationError(err)
	}
	room, err := h.store.CreateRoom(r.Context(), &in)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusCreated, room)
	return nil
}

// PUT ?entity=rooms&id=X
// Не переданные features/amenities/images (и null) остаются как были.
func (h *Handler) updateRoom(w http.ResponseWriter, r *http.Request) error {
	id, err := requireID(r, "id")
	if err != nil {
		return err
	}
	var in models.RoomInput
	if err := decodeJSON(w, r, &in); err != nil {
		return err
	}
	if err := h.validate.Struct(in); err != nil {
		return errs.ValidationError(err)
	}
	room, err := h.store.UpdateRoom(r.Context(), id, &in)
	if err != nil {
		return notFoundAs(err, "Room not found")
	}
	writeJSON(w, http.StatusOK, room)
	return nil
}

// DELETE ?entity=rooms&id=X
func (h *Handler) deleteRoom(w http.ResponseWriter, r *http.Request) error {
	id, err := requireID(r, "id")
	if err != nil {
		return err
	}
	if err := h.store.DeleteRoom(r.Context(), id); err != nil {
		return notFoundAs(err, "Room not found")
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	return nil
}

// GET ?entity=owners
func (h *Handler) listCatalogOwners(w http.ResponseWriter, r *http.Request) error {
	owners, err := h.store.ListOwnersByName(r.Context())
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, owners)
	return nil
}

// catalogOwnerInput - собственник без учётной записи; name - старое имя поля full_name
type catalogOwnerInput struct {
	FullName string `json:"full_name"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Telegram string `json:"telegram"`
	Email    string `json:"email"`
}

// POST ?entity=owners
func (h *Handler) createCatalogOwner(w http.ResponseWriter, r *http.Request) error {
	var in catalogOwnerInput
	if err := decodeJSON(w, r, &in); err != nil {
		return err
	}
	fullName := strings.TrimSpace(in.FullName)
	if fullName == "" {
		fullName = strings.TrimSpace(in.Name)
	}
	if fullName == "" {
		return errs.NewBadRequestError("full_name required")
	}

	owner := &models.Owner{
		FullName: fullName,
		Phone:    nonEmpty(strings.TrimSpace(in.Phone)),
		Telegram: nonEmpty(strings.TrimSpace(in.Telegram)),
		Email:    nonEmpty(strings.TrimSpace(in.Email)),
	}
	if err := h.store.CreateOwner(r.Context(), owner); err != nil {
		return err
	}
	writeJSON(w, http.StatusCreated, owner)
	return nil
}

// POST ?entity=stats&id=X&action=view|click
func (h *Handler) recordStat(kind db.StatKind) handlerFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		id, err := requireID(r, "id")
		if err != nil {
			return err
		}
		if err := h.store.RecordStat(r.Context(), id, kind); err != nil {
			return notFoundAs(err, "Hotel not found")
		}
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
		return nil
	}
}
