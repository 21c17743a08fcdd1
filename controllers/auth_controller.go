package controllers

import (
	"net/http"
	"time"

	"github.com/Company-KERL/Kerl-backend/middleware"
	"github.com/Company-KERL/Kerl-backend/models"
	"github.com/Company-KERL/Kerl-backend/services"
	"github.com/gin-gonic/gin"
)

// CookieConfig controls the session cookie written on login.
type CookieConfig struct {
	Domain string
	Secure bool
	MaxAge time.Duration
}

// AuthController handles signup, login and profile requests.
type AuthController struct {
	authService services.AuthService
	cookie      CookieConfig
}

// NewAuthController creates a new AuthController.
func NewAuthController(authService services.AuthService, cookie CookieConfig) *AuthController {
	return &AuthController{authService: authService, cookie: cookie}
}

// Signup handles POST /signup.
func (ac *AuthController) Signup(c *gin.Context) {
	var req models.SignupRequest
	if !bindJSON(c, &req, "Name, email, and password are required") {
		return
	}

	if _, err := ac.authService.Signup(c.Request.Context(), &req); err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "User registered successfully"})
}

// Login handles POST /login and sets the session cookie.
func (ac *AuthController) Login(c *gin.Context) {
	var req models.LoginRequest
	if !bindJSON(c, &req, "Email and password are required") {
		return
	}

	user, token, err := ac.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		abort(c, err)
		return
	}

	ac.setSessionCookie(c, token, int(ac.cookie.MaxAge.Seconds()))
	c.JSON(http.StatusOK, gin.H{"message": "Login successful", "user": user})
}

// Logout handles POST /logout. Sessions are stateless so only the cookie
// is cleared.
func (ac *AuthController) Logout(c *gin.Context) {
	ac.setSessionCookie(c, "", -1)
	c.JSON(http.StatusOK, gin.H{"message": "Logout successful"})
}

// GetProfile handles GET /profile.
func (ac *AuthController) GetProfile(c *gin.Context) {
	userID, ok := sessionUser(c, "")
	if !ok {
		return
	}

	user, err := ac.authService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Profile data", "user": user})
}

// CheckAuth handles GET /check-auth.
func (ac *AuthController) CheckAuth(c *gin.Context) {
	userID, ok := sessionUser(c, "")
	if !ok {
		return
	}

	user, err := ac.authService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Authenticated", "user": user})
}

// UpdateUser handles PUT /profile.
func (ac *AuthController) UpdateUser(c *gin.Context) {
	userID, ok := sessionUser(c, "")
	if !ok {
		return
	}

	var req models.UpdateUserRequest
	if !bindJSON(c, &req, "Invalid request body") {
		return
	}

	user, err := ac.authService.UpdateUser(c.Request.Context(), userID, &req)
	if err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User details updated successfully", "user": user})
}

func (ac *AuthController) setSessionCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.AuthCookieName, value, maxAge, "/", ac.cookie.Domain, ac.cookie.Secure, true)
}
