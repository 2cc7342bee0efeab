package webapi

import (
	"github.com/gofiber/fiber/v2"
	"github.com/zokasta/bank/pkg/app"
	"github.com/zokasta/bank/pkg/middleware"
	statssvc "github.com/zokasta/bank/pkg/service/stats"
)

// StatsRoutes registers the admin reporting endpoints.
func StatsRoutes(router fiber.Router, a *app.App) {
	jwt := middleware.JwtProtected(a.Config.Jwt)
	router.Get("/admin/stats/growth", jwt, middleware.AdminOnly(), TransactionGrowth(a.StatsService))
	router.Get("/admin/stats/summary", jwt, middleware.AdminOnly(), SixMonthSummary(a.StatsService))
}

// TransactionGrowth reports ledger volume for ?period= against the period
// before it.
func TransactionGrowth(svc *statssvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		growth, err := svc.TransactionGrowth(
			c.UserContext(),
			c.Query("period", "month"),
			c.Query("type"),
			c.QueryBool("rolled_back"),
		)
		if err != nil {
			return DomainErrorJSON(c, err)
		}
		return SuccessResponseJSON(c, fiber.StatusOK, "Growth", fiber.Map{
			"current":        growth.Current.String(),
			"previous":       growth.Previous.String(),
			"growth_percent": growth.GrowthPercent,
		})
	}
}

// SixMonthSummary returns monthly ledger volume for the last six months.
func SixMonthSummary(svc *statssvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		summary, err := svc.SixMonthSummary(c.UserContext(), c.Query("type"))
		if err != nil {
			return DomainErrorJSON(c, err)
		}
		totals := make([]string, 0, len(summary.Totals))
		for _, total := range summary.Totals {
			totals = append(totals, total.String())
		}
		return SuccessResponseJSON(c, fiber.StatusOK, "Summary", fiber.Map{
			"months": summary.Months,
			"totals": totals,
		})
	}
}
