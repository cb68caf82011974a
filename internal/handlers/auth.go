package handlers

import (
	"errors"
	"net/http"

	"coke_oven/internal/models"
	"coke_oven/internal/service"

	"github.com/gin-gonic/gin"
)

// authCredentials is the shared payload of sign-up and sign-in.
type authCredentials struct {
	Username string `json:"username" binding:"required" example:"shift-a"`
	Password string `json:"password" binding:"required"`
}

// bindJSONOrBadRequest binds the body into dst or writes a 400 and returns false.
func (h *Handler) bindJSONOrBadRequest(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		h.logInfo("bad_request_body", "path", c.FullPath(), "err", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}

// @Summary      Sign up
// @Description  Registers an operator allowed to record and query cycles.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      authCredentials  true  "Credentials"
// @Success      201   {object}  map[string]int
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /auth/sign-up [post]
func (h *Handler) signUp(c *gin.Context) {
	var input authCredentials
	if ok := h.bindJSONOrBadRequest(c, &input); !ok {
		return
	}

	id, err := h.services.SignUp(c.Request.Context(), input.Username, input.Password)
	switch {
	case err == nil:
		c.JSON(http.StatusCreated, gin.H{"id": id})
	case errors.Is(err, service.ErrInvalidCredentials):
		h.logInfo("auth_sign_up_rejected", "username", input.Username, "err", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrDuplicateRecord):
		h.logInfo("auth_sign_up_rejected", "username", input.Username, "err", err)
		c.JSON(http.StatusConflict, gin.H{"error": "username already taken"})
	default:
		h.respondError(c, "auth_sign_up_failed", err, "username", input.Username)
	}
}

// @Summary      Sign in
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      authCredentials  true  "Credentials"
// @Success      200   {object}  map[string]string  "token"
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /auth/sign-in [post]
func (h *Handler) signIn(c *gin.Context) {
	var input authCredentials
	if ok := h.bindJSONOrBadRequest(c, &input); !ok {
		return
	}

	token, err := h.services.GenerateToken(c.Request.Context(), input.Username, input.Password)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"token": token})
	case errors.Is(err, service.ErrUserNotFound), errors.Is(err, service.ErrInvalidPassword):
		h.logInfo("auth_sign_in_rejected", "username", input.Username)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
	default:
		h.respondError(c, "auth_sign_in_failed", err, "username", input.Username)
	}
}
