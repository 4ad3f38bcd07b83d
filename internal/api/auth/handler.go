package auth

import (
	"context"
	"net/http"
	"strconv"

	"navibu-api/internal/api/response"
	"navibu-api/internal/app/http/middleware"
	"navibu-api/internal/domain/users"

	"github.com/gin-gonic/gin"
)

// AccountService is the part of users.Service the auth endpoints use.
type AccountService interface {
	Register(ctx context.Context, in users.RegisterInput) (*users.RegisterResult, error)
	VerifyAccount(ctx context.Context, email, code string) error
	ResendVerification(ctx context.Context, email string) error
	Login(ctx context.Context, email, password string) (*users.LoginResult, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, email, code, newPassword string) error
	CheckUserHasRoutes(ctx context.Context, userID uint) (bool, error)
	Profile(ctx context.Context, userID uint) (*users.User, error)
}

type Handler struct {
	accounts AccountService
}

func NewHandler(accounts AccountService) *Handler {
	return &Handler{accounts: accounts}
}

func (h *Handler) Register(c *gin.Context) {
	var input registerRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, "A valid email and a password are required")
		return
	}

	res, err := h.accounts.Register(c.Request.Context(), users.RegisterInput{
		Email:    input.Email,
		Password: input.Password,
		Name:     input.Name,
		Surname:  input.Surname,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	msg := "User registered. Please check your email for the verification code."
	if !res.EmailSent {
		msg = "User registered, but the verification email could not be sent. Please request a new code."
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":    msg,
		"user_id":    res.UserID,
		"email_sent": res.EmailSent,
	})
}

func (h *Handler) Verify(c *gin.Context) {
	var input verifyRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, "Email and code are required")
		return
	}

	if err := h.accounts.VerifyAccount(c.Request.Context(), input.Email, input.Code); err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Account verified successfully"})
}

func (h *Handler) ResendVerification(c *gin.Context) {
	var input emailRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, "Missing or invalid email")
		return
	}

	if err := h.accounts.ResendVerification(c.Request.Context(), input.Email); err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Verification email resent"})
}

func (h *Handler) Login(c *gin.Context) {
	var input loginRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, "Email and password are required")
		return
	}

	res, err := h.accounts.Login(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"token":   res.Token,
		"user":    toUserDTO(res.User),
	})
}

func (h *Handler) ForgotPassword(c *gin.Context) {
	var input emailRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, "Email is required")
		return
	}

	if err := h.accounts.ForgotPassword(c.Request.Context(), input.Email); err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password reset code sent to your email"})
}

func (h *Handler) ResetPassword(c *gin.Context) {
	var input resetPasswordRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, "Email, code and new_password are required")
		return
	}

	if err := h.accounts.ResetPassword(c.Request.Context(), input.Email, input.Code, input.NewPassword); err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password updated successfully"})
}

// CheckRoutes runs behind RequireSelf("user_id"), so the query param is already validated.
func (h *Handler) CheckRoutes(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Query("user_id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "Invalid user_id")
		return
	}

	has, err := h.accounts.CheckUserHasRoutes(c.Request.Context(), uint(userID))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"has_routes": has})
}

func (h *Handler) Home(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	user, err := h.accounts.Profile(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Welcome to Navibu",
		"user":    toUserDTO(user),
	})
}

// Logout only acknowledges; tokens are stateless and the client drops its copy.
func (h *Handler) Logout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}
