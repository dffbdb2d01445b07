package dto

import "time"

type GenerateKeyResponse struct {
	UserID      int64     `json:"user_id"`
	Key         string    `json:"key"`
	GeneratedAt time.Time `json:"generated_at"`
}

type SecretKeyInfoResponse struct {
	UserID      int64      `json:"user_id"`
	HasKey      bool       `json:"has_key"`
	GeneratedAt *time.Time `json:"generated_at,omitempty"`
}
