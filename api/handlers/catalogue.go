package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sculpture-guide/backend/internal/model"
	"github.com/sculpture-guide/backend/internal/store"
)

// CatalogueHandler serves read-only lookups against the entity store.
type CatalogueHandler struct {
	store *store.Store
}

// NewCatalogueHandler creates a new CatalogueHandler.
func NewCatalogueHandler(st *store.Store) *CatalogueHandler {
	return &CatalogueHandler{store: st}
}

// Search handles GET /api/sculptures - conjunctive sculpture search. An
// unloaded store yields an empty result set, not an error.
func (h *CatalogueHandler) Search(c *gin.Context) {
	criteria := store.SearchCriteria{
		Name:     c.Query("name"),
		Artist:   c.Query("artist"),
		Material: c.Query("material"),
		Period:   c.Query("period"),
		Location: c.Query("location"),
	}

	sculptures := h.store.Search(criteria)
	if sculptures == nil {
		sculptures = []model.Sculpture{}
	}

	c.JSON(http.StatusOK, gin.H{
		"sculptures": sculptures,
		"count":      len(sculptures),
	})
}

// Get handles GET /api/sculptures/:id - exact id lookup.
func (h *CatalogueHandler) Get(c *gin.Context) {
	id := c.Param("id")

	entity, ok := h.store.GetByID(model.KindSculpture, id)
	if !ok {
		sendError(c, http.StatusNotFound, "SCULPTURE_NOT_FOUND", "Sculpture "+id+" not found")
		return
	}

	c.JSON(http.StatusOK, entity)
}

// RegisterRoutes registers the catalogue routes on a Gin router group.
func (h *CatalogueHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/sculptures", h.Search)
	rg.GET("/sculptures/:id", h.Get)
}
