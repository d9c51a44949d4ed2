package middleware

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"englearn/backend/config"
	"englearn/backend/models"
	"englearn/backend/utils"
)

// principalKey is the Locals key the auth middleware stores the principal
// under.
const principalKey = "principal"

// Principal is the authenticated user attached to the request.
type Principal struct {
	UserID                string
	Username              string
	EnglishLevel          string
	HasCompletedFirstQuiz bool
	Token                 string
}

// AuthMiddleware validates the bearer session token on every protected
// endpoint and attaches the principal to the request.
func AuthMiddleware(db *gorm.DB, cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := bearerToken(c)
		if !ok {
			return utils.Unauthorized(c, "Missing or invalid authorization header")
		}

		principal, err := Authenticate(db, cfg, token)
		if err != nil {
			return utils.Unauthorized(c, "Invalid or expired session")
		}

		c.Locals(principalKey, principal)
		return c.Next()
	}
}

// Authenticate resolves a bearer token to its principal. Expiry is enforced
// lazily here; the periodic sweep only keeps the table small.
func Authenticate(db *gorm.DB, cfg *config.Config, token string) (*Principal, error) {
	signed := utils.SignToken(token, cfg.SigningSecret)

	var session models.Session
	if err := db.First(&session, "token = ?", signed).Error; err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if !session.Valid(now) {
		if session.IsActive {
			db.Model(&models.Session{}).Where("token = ?", signed).Update("is_active", false)
		}
		return nil, errors.New("session expired")
	}

	var user models.User
	if err := db.First(&user, "id = ?", session.UserID).Error; err != nil {
		return nil, err
	}

	return &Principal{
		UserID:                user.ID,
		Username:              user.Username,
		EnglishLevel:          user.EnglishLevel,
		HasCompletedFirstQuiz: user.HasCompletedFirstQuiz,
		Token:                 token,
	}, nil
}

// GetPrincipal returns the principal attached by AuthMiddleware.
func GetPrincipal(c *fiber.Ctx) *Principal {
	p, _ := c.Locals(principalKey).(*Principal)
	return p
}

func bearerToken(c *fiber.Ctx) (string, bool) {
	header := c.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return "", false
	}
	token := strings.TrimPrefix(header, "Bearer ")
	if token == "" {
		return "", false
	}
	return token, true
}
