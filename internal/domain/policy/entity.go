package policy

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	KindRetention = "retention"
	// KindTerms is the terms of use every account must accept before using the vault.
	KindTerms = "terms"
)

type (
	Policy struct {
		UUID          uuid.UUID
		Kind          string
		Version       string
		Content       string
		RetentionDays int64
		Active        bool
		UpdatedAt     time.Time
	}

	Repository interface {
		FetchActivePolicy(ctx context.Context, kind string) (*Policy, error)
	}
)

// Retention converts the policy's day count to a window; zero means "not set".
func (p *Policy) Retention() time.Duration {
	if p == nil || p.RetentionDays <= 0 {
		return 0
	}
	return time.Duration(p.RetentionDays) * 24 * time.Hour
}
