package handlers

import (
	"context"
	"log"
	"net/http"

	"reelpick/models"
)

type sectionsCatalog interface {
	Sections(ctx context.Context) ([]models.Section, error)
}

type LibrariesHandler struct {
	Catalog sectionsCatalog
}

func NewLibrariesHandler(catalog sectionsCatalog) *LibrariesHandler {
	return &LibrariesHandler{Catalog: catalog}
}

// List returns the media server's library sections.
func (h *LibrariesHandler) List(w http.ResponseWriter, r *http.Request) {
	sections, err := h.Catalog.Sections(r.Context())
	if err != nil {
		log.Printf("[libraries] sections fetch failed err=%v", err)
		writeError(w, http.StatusBadGateway, "media server unavailable, try again")
		return
	}
	if sections == nil {
		sections = []models.Section{}
	}
	writeJSON(w, http.StatusOK, sections)
}
