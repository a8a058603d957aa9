package rest

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vpetrenko/accountd/internal/common"
	"github.com/vpetrenko/accountd/internal/server/models"
)

func (s *Server) registerUser(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "invalid input")
		return
	}

	user, err := s.identity.Register(c.Request.Context(), req.Username, req.Name, req.Password)
	if err != nil {
		s.handleServiceError(c, err)
		return
	}

	s.logger.Info(c.Request.Context(), "user registered", "username", user.Username, "user_id", user.ID)
	c.JSON(http.StatusCreated, AuthResponse{User: toUserResponse(user), Token: user.Token})
}

func (s *Server) loginUser(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "invalid input")
		return
	}

	user, err := s.identity.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		s.handleServiceError(c, err)
		return
	}

	s.logger.Info(c.Request.Context(), "user logged in", "username", user.Username, "user_id", user.ID)
	c.JSON(http.StatusOK, AuthResponse{User: toUserResponse(user), Token: user.Token})
}

func (s *Server) listUsers(c *gin.Context) {
	users, err := s.identity.List(c.Request.Context())
	if err != nil {
		s.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, toUserResponses(users))
}

func (s *Server) getUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	user, err := s.identity.GetByID(c.Request.Context(), id)
	if err != nil {
		s.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, toUserResponse(user))
}

func (s *Server) updateUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	target, err := s.identity.GetByID(c.Request.Context(), id)
	if err != nil {
		s.handleServiceError(c, err)
		return
	}

	// An absent body maps to a nil patch so the service reports the
	// missing-patch failure itself.
	var req *UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if errors.Is(err, io.EOF) {
			req = nil
		} else {
			errorResponse(c, http.StatusBadRequest, "invalid input")
			return
		}
	}

	var patch *models.UserPatch
	if req != nil {
		patch = &models.UserPatch{Username: req.Username}
		if req.Birthday != nil {
			birthday, err := time.Parse(common.BirthdayLayout, *req.Birthday)
			if err != nil {
				errorResponse(c, http.StatusBadRequest, "invalid birthday format")
				return
			}
			patch.Birthday = &birthday
		}
	}

	if _, err := s.identity.Edit(c.Request.Context(), target, patch); err != nil {
		s.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// logoutUser ends a session by explicit token equality against the target
// user's stored token; it does not go through the resolve-by-token gate.
func (s *Server) logoutUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	token := c.GetHeader(common.AuthTokenHeaderName)
	if token == "" {
		errorResponse(c, http.StatusUnauthorized, "authorization token is required")
		return
	}

	user, err := s.identity.GetByID(c.Request.Context(), id)
	if err != nil {
		s.handleServiceError(c, err)
		return
	}

	if token != user.Token {
		errorResponse(c, http.StatusUnauthorized, "token does not match")
		return
	}

	if err := s.identity.Logout(c.Request.Context(), user); err != nil {
		s.handleServiceError(c, err)
		return
	}

	s.logger.Info(c.Request.Context(), "user logged out", "user_id", user.ID)
	c.Status(http.StatusNoContent)
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		errorResponse(c, http.StatusBadRequest, "invalid user id")
		return 0, false
	}
	return id, true
}
