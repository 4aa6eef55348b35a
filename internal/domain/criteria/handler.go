package criteria

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/ET-NoahDolev/medgemma-hackathon-sub000/internal/platform/auth"
	"github.com/ET-NoahDolev/medgemma-hackathon-sub000/internal/platform/extract"
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
	g.GET("/criteria", h.ListCriteria)
	g.GET("/criteria/:id", h.GetCriterion)
	g.PUT("/criteria/:id", h.EditCriterion)
	g.DELETE("/criteria/:id", h.DeleteCriterion)
	g.POST("/criteria/:id/ground", h.Ground)
	g.POST("/criteria/:id/edit-mapping", h.EditMapping)
	g.POST("/field-mapping/suggest", h.SuggestFields)

	api.POST("/criteria", h.CreateCriterion, auth.RequireRole("admin"))
}

func (h *Handler) ListCriteria(c echo.Context) error {
	pg := pagination.FromContext(c)
	criteria, total, err := h.svc.ListCriteria(c.Request().Context(), c.QueryParam("protocol_id"), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(criteria, total, pg.Limit, pg.Offset))
}

func (h *Handler) GetCriterion(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	crit, err := h.svc.GetCriterion(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "criterion not found")
	}
	return c.JSON(http.StatusOK, crit)
}

func (h *Handler) CreateCriterion(c echo.Context) error {
	var crit Criterion
	if err := c.Bind(&crit); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	created, err := h.svc.CreateCriterion(c.Request().Context(), &crit)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *Handler) EditCriterion(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req EditRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	req.Actor = auth.UserIDFromContext(c.Request().Context())

	result, err := h.svc.EditCriterion(c.Request().Context(), id, &req)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, result)
}

func (h *Handler) DeleteCriterion(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req DeleteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	req.Actor = auth.UserIDFromContext(c.Request().Context())

	if err := h.svc.DeleteCriterion(c.Request().Context(), id, &req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) Ground(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	candidates, err := h.svc.Ground(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "criterion not found")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"candidates": candidates})
}

func (h *Handler) EditMapping(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var edits extract.MappingEdits
	if err := c.Bind(&edits); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	actor := auth.UserIDFromContext(c.Request().Context())

	if err := h.svc.EditMappingUpstream(c.Request().Context(), id, actor, edits); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.NoContent(http.StatusAccepted)
}

type suggestRequest struct {
	Text string `json:"text"`
}

func (h *Handler) SuggestFields(c echo.Context) error {
	var req suggestRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	suggestions, err := h.svc.SuggestFields(c.Request().Context(), req.Text)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"suggestions": suggestions})
}
