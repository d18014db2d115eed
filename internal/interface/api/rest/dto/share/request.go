package share

import "time"

type (
	TokenRequest struct {
		ExpiresAt   *time.Time `json:"expires_at"`
		MaxAccesses *int64     `json:"max_accesses"`
	}
	GrantRequest struct {
		Email   string `json:"email"`
		Edit    bool   `json:"edit"`
		Delete  bool   `json:"delete"`
		Reshare bool   `json:"reshare"`
	}
	RevokeRequest struct {
		Email string `json:"email"`
	}
)
