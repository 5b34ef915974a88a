package handlers

import (
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"regatta/internal/services"
)

// AuthHandler handles HTTP requests for registration and authentication.
type AuthHandler struct {
	authService *services.AuthService
	validate    *validator.Validate
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validate:    validator.New(),
	}
}

// RegisterRoutes registers the public authentication routes.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	authRoutes := router.Group("/auth")
	authRoutes.Post("/register", h.HandleRegister)
	authRoutes.Post("/login", h.HandleLogin)
}

// RegisterProtectedRoutes registers the account routes that require a token.
func (h *AuthHandler) RegisterProtectedRoutes(router fiber.Router) {
	meRoutes := router.Group("/auth/me")
	meRoutes.Get("/", h.HandleMe)
	meRoutes.Put("/email", h.HandleUpdateEmail)
	meRoutes.Post("/deactivate", h.HandleDeactivate)
}

// RegisterRequest represents the request body for registration.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required"`
}

// HandleRegister handles new user registration.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return writeValidationErrors(c, err)
	}

	user, err := h.authService.Register(req.Email, req.Username, req.Password)
	if err != nil {
		log.Printf("Error registering user: %v", err)
		return writeServiceError(c, "Registration failed", err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User registered successfully",
		"user":    user,
	})
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// HandleLogin handles user login and issues a JWT token.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return writeValidationErrors(c, err)
	}

	user, err := h.authService.Authenticate(req.Username, req.Password)
	if err != nil {
		log.Printf("Error during login for user %s: %v", req.Username, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Authentication failed",
		})
	}
	if user == nil {
		// Absent, inactive, and wrong-password all look the same here.
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Invalid credentials",
		})
	}

	token, err := h.authService.GenerateToken(user)
	if err != nil {
		log.Printf("Error generating token for user %s: %v", user.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Authentication failed",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Login successful",
		"token":   token,
		"user":    user,
	})
}

// HandleMe returns the authenticated user's account.
func (h *AuthHandler) HandleMe(c *fiber.Ctx) error {
	user, err := h.authService.GetByID(currentUserID(c))
	if err != nil {
		return writeServiceError(c, "Could not load account", err)
	}
	if user == nil {
		return writeNotFoundOrDenied(c, "User")
	}
	return c.JSON(fiber.Map{"user": user})
}

// UpdateEmailRequest represents the request body for an email change.
type UpdateEmailRequest struct {
	Email string `json:"email" validate:"required,email,max=255"`
}

// HandleUpdateEmail changes the authenticated user's email.
func (h *AuthHandler) HandleUpdateEmail(c *fiber.Ctx) error {
	var req UpdateEmailRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return writeValidationErrors(c, err)
	}

	user, err := h.authService.UpdateEmail(currentUserID(c), req.Email)
	if err != nil {
		log.Printf("Error updating email: %v", err)
		return writeServiceError(c, "Could not update email", err)
	}
	return c.JSON(fiber.Map{
		"message": "Email updated successfully",
		"user":    user,
	})
}

// HandleDeactivate disables the authenticated user's account.
func (h *AuthHandler) HandleDeactivate(c *fiber.Ctx) error {
	user, err := h.authService.Deactivate(currentUserID(c))
	if err != nil {
		log.Printf("Error deactivating user: %v", err)
		return writeServiceError(c, "Could not deactivate account", err)
	}
	return c.JSON(fiber.Map{
		"message": "Account deactivated",
		"user":    user,
	})
}
