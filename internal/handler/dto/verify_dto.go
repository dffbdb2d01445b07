package dto

import (
	"time"

	"github.com/borrzu/verify-service/internal/domain/user"
)

type StatusResponse struct {
	SiteURL        string `json:"site_url"`
	SiteName       string `json:"site_name"`
	Version        string `json:"version"`
	Active         bool   `json:"active"`
	HasActiveKeys  bool   `json:"has_active_keys"`
	TotalUsers     int64  `json:"total_users"`
	CommerceActive bool   `json:"commerce_active"`
	Message        string `json:"message,omitempty"`
}

type VerifyUserRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Username string `json:"username"`
}

type UserData struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	DisplayName  string    `json:"display_name"`
	RegisteredAt time.Time `json:"registered_at"`
}

func NewUserData(u *user.User) *UserData {
	return &UserData{
		ID:           u.ID,
		Email:        u.Email,
		Username:     u.Username,
		DisplayName:  u.DisplayName,
		RegisteredAt: u.RegisteredAt,
	}
}

type VerifyUserResponse struct {
	Exists   bool      `json:"exists"`
	Message  string    `json:"message"`
	UserData *UserData `json:"user_data,omitempty"`
}

type VerifyPurchaseRequest struct {
	Email     string `json:"email" binding:"required,email"`
	ProductID int64  `json:"product_id" binding:"required,gt=0"`
}

type VerifyPurchaseResponse struct {
	HasPurchased *bool  `json:"has_purchased,omitempty"`
	Message      string `json:"message"`
	UserID       int64  `json:"user_id,omitempty"`
	ProductID    int64  `json:"product_id,omitempty"`
}
