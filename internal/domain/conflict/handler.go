package conflict

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/ET-NoahDolev/medgemma-hackathon-sub000/internal/platform/auth"
	"github.com/ET-NoahDolev/medgemma-hackathon-sub000/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("", auth.RequireRole("reviewer"))
	g.GET("/conflicts", h.ListConflicts)
	g.GET("/conflicts/:id", h.GetConflict)
	g.POST("/conflicts/:id/resolve", h.Resolve)

	api.POST("/conflicts", h.CreateConflict, auth.RequireRole("admin"))
}

func (h *Handler) ListConflicts(c echo.Context) error {
	pg := pagination.FromContext(c)
	conflicts, total, err := h.svc.ListConflicts(c.Request().Context(), c.QueryParam("status"), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(conflicts, total, pg.Limit, pg.Offset))
}

func (h *Handler) GetConflict(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	conf, err := h.svc.GetConflict(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "conflict not found")
	}
	return c.JSON(http.StatusOK, conf)
}

func (h *Handler) CreateConflict(c echo.Context) error {
	var conf Conflict
	if err := c.Bind(&conf); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	created, err := h.svc.CreateConflict(c.Request().Context(), &conf)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *Handler) Resolve(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req ResolveRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	req.Actor = auth.UserIDFromContext(c.Request().Context())

	resolved, err := h.svc.Resolve(c.Request().Context(), id, &req)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, resolved)
}
