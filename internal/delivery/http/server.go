package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires every route of the compensation surface onto an Echo
// instance. The caller owns startup and shutdown.
func NewRouter(h *Handler) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api/v1")

	api.POST("/matrix/placements", h.PlaceMember)
	api.GET("/matrix/placements/:memberId", h.GetPlacement)
	api.DELETE("/matrix/placements/:memberId", h.RemoveConnection)

	api.GET("/members/:memberId/rank", h.GetRank)
	api.POST("/members/:memberId/rank/evaluate", h.EvaluateRank)
	api.POST("/members/:memberId/rank/demote", h.DemoteRank)
	api.GET("/members/:memberId/rank/progress", h.GetRankProgress)

	api.GET("/members/:memberId/balance", h.GetBalance)
	api.GET("/members/:memberId/commissions", h.ListCommissions)
	api.POST("/commissions/:eventId/void", h.VoidCommission)

	api.POST("/payouts", h.RequestPayout)
	api.GET("/members/:memberId/payouts", h.ListPayouts)
	api.POST("/payouts/:requestId/approve", h.ApprovePayout)
	api.POST("/payouts/:requestId/reject", h.RejectPayout)
	api.POST("/payouts/:requestId/paid", h.MarkPayoutPaid)

	api.POST("/billing/events", h.HandleBillingEvent)

	return e
}
