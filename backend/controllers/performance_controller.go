package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"englearn/backend/learning"
	"englearn/backend/middleware"
	"englearn/backend/models"
	"englearn/backend/utils"
)

type PerformanceController struct {
	DB         *gorm.DB
	Aggregator *learning.Aggregator
}

func NewPerformanceController(db *gorm.DB, agg *learning.Aggregator) *PerformanceController {
	return &PerformanceController{DB: db, Aggregator: agg}
}

// GetUserProfile returns the profile projection of the user named in the
// path.
func (pc *PerformanceController) GetUserProfile(c *fiber.Ctx) error {
	userID := c.Params("user_id")

	var user models.User
	if err := pc.DB.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "User not found")
		}
		return utils.StoreUnavailable(c, "Could not query database")
	}

	return utils.Success(c, fiber.StatusOK, profileProjection(&user))
}

// GetUserPerformance returns the basic metrics, derived from quiz records.
// The aggregator reconciles the cached user fields on the way, so this
// endpoint and the profile endpoint always agree.
func (pc *PerformanceController) GetUserPerformance(c *fiber.Ctx) error {
	principal := middleware.GetPrincipal(c)

	perf, err := pc.Aggregator.Performance(c.UserContext(), principal.UserID)
	if err != nil {
		if errors.Is(err, learning.ErrUserNotFound) {
			return utils.NotFound(c, "User not found")
		}
		return utils.StoreUnavailable(c, "Could not compute performance")
	}

	perf.AverageScore = roundScore(perf.AverageScore)
	return utils.Success(c, fiber.StatusOK, perf)
}

// GetUserPerformanceDetailed adds per-topic and per-level breakdowns plus
// the chronological quiz history.
func (pc *PerformanceController) GetUserPerformanceDetailed(c *fiber.Ctx) error {
	principal := middleware.GetPrincipal(c)

	perf, err := pc.Aggregator.PerformanceDetailed(c.UserContext(), principal.UserID)
	if err != nil {
		if errors.Is(err, learning.ErrUserNotFound) {
			return utils.NotFound(c, "User not found")
		}
		return utils.StoreUnavailable(c, "Could not compute performance")
	}

	perf.AverageScore = roundScore(perf.AverageScore)
	return utils.Success(c, fiber.StatusOK, perf)
}
