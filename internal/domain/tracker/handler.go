package tracker

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ET-NoahDolev/medgemma-hackathon-sub000/internal/platform/auth"
)

type Handler struct {
	store *Store
}

func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("", auth.RequireRole("reviewer"))
	g.GET("/tasks", h.ListTasks)
	g.POST("/tasks/clear-completed", h.ClearCompleted)
}

// ListTasks returns the current task snapshot.
func (h *Handler) ListTasks(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"tasks": h.store.Snapshot(),
	})
}

// ClearCompleted drops terminal tasks from the store.
func (h *Handler) ClearCompleted(c echo.Context) error {
	removed := h.store.ClearCompleted()
	return c.JSON(http.StatusOK, map[string]int{"removed": removed})
}
