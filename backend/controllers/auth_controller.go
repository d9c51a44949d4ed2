package controllers

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"englearn/backend/config"
	"englearn/backend/middleware"
	"englearn/backend/models"
	"englearn/backend/utils"
)

type AuthController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewAuthController(db *gorm.DB, cfg *config.Config) *AuthController {
	return &AuthController{DB: db, Cfg: cfg}
}

// [+] SignUp godoc
// @Summary Register a new user
// @Description Creates a new account and signs the user in
// @Tags auth
// @Accept json
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Router /auth/signup [post]
func (ac *AuthController) SignUp(c *fiber.Ctx) error {
	type SignUpInput struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	var input SignUpInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	if !utils.ValidateUsername(input.Username) {
		return utils.BadRequest(c, "Username must be 3-20 characters, alphanumeric and underscore only")
	}
	if !utils.ValidatePassword(input.Password) {
		return utils.BadRequest(c, "Password must be at least 8 characters with letters and numbers")
	}

	var existing models.User
	err := ac.DB.First(&existing, "username = ?", input.Username).Error
	if err == nil {
		return utils.Conflict(c, "Username already exists")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return utils.StoreUnavailable(c, "Could not query database")
	}

	hash, salt, err := utils.HashPassword(input.Password)
	if err != nil {
		return utils.InternalServerError(c, "Could not hash password")
	}

	user := models.User{
		ID:           uuid.NewString(),
		Username:     input.Username,
		PasswordHash: hash,
		PasswordSalt: salt,
		EnglishLevel: "beginner",
		Progress:     models.ProgressMap{},
		CreatedAt:    time.Now().UTC(),
	}

	var token string
	err = ac.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		token, err = ac.createSession(tx, &user)
		return err
	})
	if err != nil {
		return utils.StoreUnavailable(c, "Could not create user")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"user_id":       user.ID,
		"session_token": token,
		"username":      user.Username,
		"english_level": user.EnglishLevel,
	})
}

// [+] SignIn godoc
// @Summary User login
// @Description Authenticate user and create a session
// @Tags auth
// @Accept json
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Failure 401 {object} utils.ErrorResponse
// @Router /auth/signin [post]
func (ac *AuthController) SignIn(c *fiber.Ctx) error {
	type SignInInput struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	var input SignInInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	var user models.User
	err := ac.DB.First(&user, "username = ?", input.Username).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Burn a verification anyway so a missing username costs the
			// same time as a wrong password.
			utils.VerifyPassword(input.Password, dummyHash, dummySalt)
			return utils.Unauthorized(c, "Invalid username or password")
		}
		return utils.StoreUnavailable(c, "Could not query database")
	}

	if !utils.VerifyPassword(input.Password, user.PasswordHash, user.PasswordSalt) {
		return utils.Unauthorized(c, "Invalid username or password")
	}

	now := time.Now().UTC()
	ac.DB.Model(&models.User{}).Where("id = ?", user.ID).Update("last_login", now)

	token, err := ac.createSession(ac.DB, &user)
	if err != nil {
		return utils.StoreUnavailable(c, "Could not create session")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"user_id":       user.ID,
		"session_token": token,
		"username":      user.Username,
		"english_level": user.EnglishLevel,
	})
}

// Logout revokes the session. Idempotent: a second call with the same token
// still reports success, which is why this handler reads the bearer itself
// instead of going through the auth middleware.
func (ac *AuthController) Logout(c *fiber.Ctx) error {
	header := c.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return utils.Unauthorized(c, "Missing or invalid authorization header")
	}
	token := strings.TrimPrefix(header, "Bearer ")

	signed := utils.SignToken(token, ac.Cfg.SigningSecret)
	ac.DB.Model(&models.Session{}).Where("token = ?", signed).Update("is_active", false)

	return utils.SuccessMessage(c, fiber.StatusOK, "Logged out successfully")
}

// Validate confirms the session and returns the signed-in user's identity.
func (ac *AuthController) Validate(c *fiber.Ctx) error {
	principal := middleware.GetPrincipal(c)

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"user_id":                  principal.UserID,
		"username":                 principal.Username,
		"english_level":            principal.EnglishLevel,
		"has_completed_first_quiz": principal.HasCompletedFirstQuiz,
	})
}

// GetProfile returns the full profile projection of the signed-in user.
func (ac *AuthController) GetProfile(c *fiber.Ctx) error {
	principal := middleware.GetPrincipal(c)

	var user models.User
	if err := ac.DB.First(&user, "id = ?", principal.UserID).Error; err != nil {
		return utils.NotFound(c, "User profile not found")
	}

	return utils.Success(c, fiber.StatusOK, profileProjection(&user))
}

// UpdateUsername changes the username, enforcing format and uniqueness.
func (ac *AuthController) UpdateUsername(c *fiber.Ctx) error {
	principal := middleware.GetPrincipal(c)

	type UpdateUsernameInput struct {
		NewUsername string `json:"new_username"`
	}

	var input UpdateUsernameInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if !utils.ValidateUsername(input.NewUsername) {
		return utils.BadRequest(c, "Username must be 3-20 characters, alphanumeric and underscore only")
	}

	var existing models.User
	err := ac.DB.First(&existing, "username = ?", input.NewUsername).Error
	if err == nil && existing.ID != principal.UserID {
		return utils.Conflict(c, "Username already exists")
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return utils.StoreUnavailable(c, "Could not query database")
	}

	if err := ac.DB.Model(&models.User{}).
		Where("id = ?", principal.UserID).
		Update("username", input.NewUsername).Error; err != nil {
		return utils.StoreUnavailable(c, "Failed to update username")
	}

	return utils.SuccessMessage(c, fiber.StatusOK, "Username updated successfully")
}

// ChangePassword verifies the current password, revokes every session of
// the user and issues one fresh session token.
func (ac *AuthController) ChangePassword(c *fiber.Ctx) error {
	principal := middleware.GetPrincipal(c)

	type ChangePasswordInput struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}

	var input ChangePasswordInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if !utils.ValidatePassword(input.NewPassword) {
		return utils.BadRequest(c, "Password must be at least 8 characters with letters and numbers")
	}

	var user models.User
	if err := ac.DB.First(&user, "id = ?", principal.UserID).Error; err != nil {
		return utils.NotFound(c, "User not found")
	}
	if !utils.VerifyPassword(input.CurrentPassword, user.PasswordHash, user.PasswordSalt) {
		return utils.BadRequest(c, "Current password is incorrect")
	}

	hash, salt, err := utils.HashPassword(input.NewPassword)
	if err != nil {
		return utils.InternalServerError(c, "Could not hash password")
	}

	var token string
	err = ac.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{}).Where("id = ?", user.ID).
			Updates(map[string]interface{}{
				"password_hash": hash,
				"password_salt": salt,
			}).Error; err != nil {
			return err
		}
		// Force re-login everywhere else.
		if err := tx.Where("user_id = ?", user.ID).Delete(&models.Session{}).Error; err != nil {
			return err
		}
		token, err = ac.createSession(tx, &user)
		return err
	})
	if err != nil {
		return utils.StoreUnavailable(c, "Failed to change password")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"message":       "Password changed successfully",
		"session_token": token,
	})
}

// DeleteAccount verifies the password and removes the user with every
// owned record.
func (ac *AuthController) DeleteAccount(c *fiber.Ctx) error {
	principal := middleware.GetPrincipal(c)

	type DeleteAccountInput struct {
		Password string `json:"password"`
	}

	var input DeleteAccountInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	var user models.User
	if err := ac.DB.First(&user, "id = ?", principal.UserID).Error; err != nil {
		return utils.NotFound(c, "User not found")
	}
	if !utils.VerifyPassword(input.Password, user.PasswordHash, user.PasswordSalt) {
		return utils.BadRequest(c, "Password is incorrect")
	}

	err := ac.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", user.ID).Delete(&models.Quiz{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", user.ID).Delete(&models.Session{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", user.ID).Delete(&models.QAEntry{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", user.ID).Delete(&models.ChatLog{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.User{}, "id = ?", user.ID).Error
	})
	if err != nil {
		return utils.StoreUnavailable(c, "Failed to delete account")
	}

	return utils.SuccessMessage(c, fiber.StatusOK, "Account deleted successfully")
}

// createSession issues a fresh bearer token and stores its signed form with
// the configured TTL.
func (ac *AuthController) createSession(tx *gorm.DB, user *models.User) (string, error) {
	token, err := utils.NewSessionToken()
	if err != nil {
		return "", err
	}

	now := time.Now().UTC()
	session := models.Session{
		Token:     utils.SignToken(token, ac.Cfg.SigningSecret),
		UserID:    user.ID,
		Username:  user.Username,
		CreatedAt: now,
		ExpiresAt: now.AddDate(0, 0, ac.Cfg.SessionTTLDays),
		IsActive:  true,
	}
	if err := tx.Create(&session).Error; err != nil {
		return "", err
	}
	return token, nil
}

// profileProjection is the display view of a user record shared by the
// profile endpoints.
func profileProjection(user *models.User) fiber.Map {
	return fiber.Map{
		"user_id":                  user.ID,
		"username":                 user.Username,
		"english_level":            user.EnglishLevel,
		"total_quizzes":            user.TotalQuizzes,
		"average_score":            roundScore(user.AverageScore),
		"progress":                 user.Progress,
		"has_completed_first_quiz": user.HasCompletedFirstQuiz,
		"level_changed":            user.LevelChanged,
		"level_change_type":        user.LevelChangeType,
		"level_change_message":     user.LevelChangeMessage,
		"previous_level":           user.PreviousLevel,
		"created_at":               user.CreatedAt,
		"last_login":               user.LastLogin,
	}
}

func roundScore(v float64) float64 {
	return float64(int(v*100+0.5)) / 100
}

// dummyHash/dummySalt feed the constant-time fallback verification on
// unknown usernames.
var dummyHash, dummySalt, _ = func() (string, string, error) {
	h, s, err := utils.HashPassword("placeholder1")
	return h, s, err
}()
