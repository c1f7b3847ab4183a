package router

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"freshcart.app/storefront/pkg/global"
	"freshcart.app/storefront/pkg/logger"
	"freshcart.app/storefront/pkg/models"
	"freshcart.app/storefront/pkg/mongo"
)

func Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid registration payload", nil))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		logger.Get().Error("failed to hash password", zap.Error(err))
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Registration failed", nil))
		return
	}

	user := &models.User{
		Email:         req.Email,
		Password:      string(hash),
		FullName:      req.FullName,
		Phone:         models.NormalizePhone(req.Phone),
		AccountStatus: "active",
	}

	created, err := deps.Users.Create(c.Request.Context(), user)
	if err != nil {
		if errors.Is(err, mongo.ErrEmailTaken) {
			c.JSON(http.StatusConflict, global.ErrorResponse("Email already registered", []global.ValidationError{
				{Field: "email", Message: "an account with this email already exists", Code: "duplicate"},
			}))
			return
		}
		logger.Get().Error("failed to create user", zap.Error(err))
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Registration failed", nil))
		return
	}

	token, err := GenerateToken(created.ID.Hex())
	if err != nil {
		logger.Get().Error("failed to issue token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Registration failed", nil))
		return
	}

	c.JSON(http.StatusCreated, global.SuccessResponse(gin.H{"user": created, "token": token}))
}

func Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid login payload", nil))
		return
	}

	user, err := deps.Users.GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		// same message as a wrong password so accounts cannot be enumerated
		c.JSON(http.StatusUnauthorized, global.ErrorResponse("Invalid email or password", nil))
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, global.ErrorResponse("Invalid email or password", nil))
		return
	}

	token, err := GenerateToken(user.ID.Hex())
	if err != nil {
		logger.Get().Error("failed to issue token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Login failed", nil))
		return
	}

	c.JSON(http.StatusOK, global.SuccessResponse(gin.H{"user": user, "token": token}))
}
