package handlers

import (
	"net/http"

	"github.com/pr-poehali-dev/apartment-rental-moscow/models"
)

// dashboardResponse - всё для личного кабинета одним ответом
type dashboardResponse struct {
	Owner      *models.Owner            `json:"owner"`
	Objects    []models.DashboardObject `json:"objects"`
	Promotions []models.Promotion       `json:"promotions"`
}

// GET /api/owner-dashboard?owner_id=X
func (h *Handler) ownerDashboard(w http.ResponseWriter, r *http.Request) error {
	ownerID, err := requireID(r, "owner_id")
	if err != nil {
		return err
	}

	owner, err := h.store.GetActiveOwner(r.Context(), ownerID)
	if err != nil {
		return notFoundAs(err, "Owner not found")
	}

	objects, err := h.store.ListOwnerObjects(r.Context(), ownerID)
	if err != nil {
		return err
	}
	if objects == nil {
		objects = []models.DashboardObject{}
	}

	promotions, err := h.store.ListCurrentPromotions(r.Context())
	if err != nil {
		return err
	}
	if promotions == nil {
		promotions = []models.Promotion{}
	}

	writeJSON(w, http.StatusOK, dashboardResponse{Owner: owner, Objects: objects, Promotions: promotions})
	return nil
}
