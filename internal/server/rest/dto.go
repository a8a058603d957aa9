package rest

import (
	"time"

	"github.com/vpetrenko/accountd/internal/common"
	"github.com/vpetrenko/accountd/internal/server/models"
)

type RegisterRequest struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UpdateUserRequest is the edit patch. Absent fields stay nil and leave the
// corresponding attribute untouched. Birthday uses the YYYY-MM-DD layout.
type UpdateUserRequest struct {
	Username *string `json:"username"`
	Birthday *string `json:"birthday"`
}

// UserResponse is the public projection of a user. It never carries the
// password or the session token.
type UserResponse struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Name         string    `json:"name"`
	Status       string    `json:"status"`
	CreationDate time.Time `json:"creationDate"`
	Birthday     *string   `json:"birthday,omitempty"`
}

// AuthResponse is returned by register and login: the projection plus the
// session token as a sibling field, so the token never rides inside the
// projection itself.
type AuthResponse struct {
	User  UserResponse `json:"user"`
	Token string       `json:"token"`
}

func toUserResponse(u *models.User) UserResponse {
	resp := UserResponse{
		ID:           u.ID,
		Username:     u.Username,
		Name:         u.Name,
		Status:       string(u.Status),
		CreationDate: u.CreatedAt,
	}
	if u.Birthday != nil {
		b := u.Birthday.Format(common.BirthdayLayout)
		resp.Birthday = &b
	}
	return resp
}

func toUserResponses(users []*models.User) []UserResponse {
	result := make([]UserResponse, 0, len(users))
	for _, u := range users {
		result = append(result, toUserResponse(u))
	}
	return result
}
