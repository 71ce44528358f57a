package eligibility

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type Handler struct {
	store    *MonitoringStore
	monitor  *Monitor
	validate *validator.Validate
}

func NewHandler(store *MonitoringStore, monitor *Monitor) *Handler {
	return &Handler{
		store:    store,
		monitor:  monitor,
		validate: validator.New(),
	}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/eligibility/check-all", h.CheckAll)
	api.POST("/eligibility/configs", h.UpsertConfig)
	api.GET("/eligibility/configs", h.ListConfigs)
	api.DELETE("/eligibility/configs/:patientId", h.RemoveConfig)
	api.GET("/eligibility/alerts", h.ListAlerts)
}

// CheckAll sweeps every monitored patient and returns the alerts raised.
func (h *Handler) CheckAll(c echo.Context) error {
	alerts := h.monitor.CheckAll(c.Request().Context())
	if alerts == nil {
		alerts = []Alert{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"alerts": alerts})
}

// UpsertConfig adds or replaces the monitoring config for a patient.
func (h *Handler) UpsertConfig(c echo.Context) error {
	var cfg Config
	if err := c.Bind(&cfg); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.validate.Struct(cfg); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	h.store.SetConfig(cfg)
	return c.JSON(http.StatusCreated, cfg)
}

func (h *Handler) ListConfigs(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{"configs": h.store.Configs()})
}

func (h *Handler) RemoveConfig(c echo.Context) error {
	if !h.store.RemoveConfig(c.Param("patientId")) {
		return echo.NewHTTPError(http.StatusNotFound, "patient is not monitored")
	}
	return c.NoContent(http.StatusNoContent)
}

// ListAlerts returns the alert history, oldest first.
func (h *Handler) ListAlerts(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{"alerts": h.store.Alerts()})
}
