package handlers

import (
	"net/http"
)

type uploadRequest struct {
	File     string `json:"file"`
	FileName string `json:"fileName"`
}

// POST /api/upload-image
func (h *Handler) uploadImage(w http.ResponseWriter, r *http.Request) error {
	var req uploadRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}
	if req.FileName == "" {
		req.FileName = "image.jpg"
	}
	res, err := h.uploader.Upload(r.Context(), req.File, req.FileName)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, res)
	return nil
}
