package referral

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"

	"github.com/masepro/referral/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/referrals", h.Intake)
	api.GET("/referrals", h.ListReferrals)
	api.GET("/referrals/:id", h.GetReferral)
	api.PATCH("/referrals/:id/status", h.UpdateStatus)

	api.POST("/referrals/normalize", h.Normalize)
	api.POST("/referrals/decide", h.Decide)
	api.POST("/referrals/route", h.Route)
}

// Intake runs the full pipeline: normalize, decide, route, persist.
func (h *Handler) Intake(c echo.Context) error {
	var raw IntakePayload
	if err := c.Bind(&raw); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	r, err := h.svc.Intake(c.Request().Context(), raw)
	if err != nil {
		if errors.Is(err, ErrNotReferral) || errors.Is(err, ErrNoPatientName) {
			return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, r)
}

// Normalize parses a raw payload and returns the canonical referral without
// persisting it. Input that does not parse as a referral yields a null
// referral, not an error.
func (h *Handler) Normalize(c echo.Context) error {
	var raw IntakePayload
	if err := c.Bind(&raw); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	r, err := h.svc.Normalize(c.Request().Context(), raw)
	if err != nil {
		if errors.Is(err, ErrNotReferral) || errors.Is(err, ErrNoPatientName) {
			return c.JSON(http.StatusOK, echo.Map{"referral": nil})
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"referral": r})
}

// Decide evaluates the decision rules against a normalized referral.
func (h *Handler) Decide(c echo.Context) error {
	var r Referral
	if err := c.Bind(&r); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.Decide(c.Request().Context(), &r); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{
		"recommendation": r.Recommendation,
		"reason":         r.Reason,
	})
}

// Route resolves the destination for a service category.
func (h *Handler) Route(c echo.Context) error {
	var body struct {
		ServiceCategory string `json:"serviceCategory"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	dest, org := h.svc.Resolve(c.Request().Context(), body.ServiceCategory)
	return c.JSON(http.StatusOK, echo.Map{
		"destination":      dest,
		"organizationName": org,
	})
}

func (h *Handler) GetReferral(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	r, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "referral not found")
	}
	return c.JSON(http.StatusOK, r)
}

func (h *Handler) ListReferrals(c echo.Context) error {
	pg := pagination.FromContext(c)
	filters := ListFilters{
		Status:      Status(c.QueryParam("status")),
		Urgency:     Urgency(c.QueryParam("urgency")),
		Destination: c.QueryParam("destination"),
	}
	items, total, err := h.svc.List(c.Request().Context(), filters, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

// UpdateStatus transitions a referral's lifecycle status.
func (h *Handler) UpdateStatus(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var body struct {
		Status Status `json:"status"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	r, err := h.svc.UpdateStatus(c.Request().Context(), id, body.Status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return echo.NewHTTPError(http.StatusNotFound, "referral not found")
		}
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}
	return c.JSON(http.StatusOK, r)
}
