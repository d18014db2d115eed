package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"filevault-api/internal/application/ports"
	"filevault-api/internal/domain/audit"
	domain "filevault-api/internal/domain/user"
)

type AccountService struct {
	tm           ports.TxManager
	lifecycle    ports.LifecycleService
	clock        ports.Clock
	audit        ports.AuditSink
	defaultQuota uint64
	mCounter     *prometheus.CounterVec
}

func NewAccountService(
	tm ports.TxManager,
	lifecycle ports.LifecycleService,
	clock ports.Clock,
	auditSink ports.AuditSink,
	defaultQuota uint64,
	mCounter *prometheus.CounterVec,
) ports.AccountService {
	return &AccountService{
		tm:           tm,
		lifecycle:    lifecycle,
		clock:        clock,
		audit:        auditSink,
		defaultQuota: defaultQuota,
		mCounter:     mCounter,
	}
}

// ProvisionAccount registers an externally authenticated identity on first contact. Calling it
// again for the same id returns the stored account unchanged.
func (as *AccountService) ProvisionAccount(ctx context.Context, userID uuid.UUID, email, name string) (*domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if userID == uuid.Nil || !strings.Contains(email, "@") {
		return nil, ErrInvalidName
	}

	u, err := as.tm.Users().FetchUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u != nil {
		return u, nil
	}

	u, err = as.tm.Users().CreateUser(ctx, domain.User{
		UUID:       userID,
		Email:      email,
		Name:       strings.TrimSpace(name),
		QuotaBytes: as.defaultQuota,
	})
	if err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			return nil, ErrNameCollision
		}
		return nil, err
	}

	as.audit.Emit(audit.New(as.clock.Now(), &userID, audit.CategoryAccount, audit.SeverityInfo, "account_provisioned", email))
	as.mCounter.WithLabelValues("account_provisioned_total").Inc()

	return u, nil
}

func (as *AccountService) FetchAccount(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	u, err := as.tm.Users().FetchUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrNotFoundOrForbidden
	}

	return u, nil
}

func (as *AccountService) RequestDeletion(ctx context.Context, userID uuid.UUID) error {
	if err := as.lifecycle.RequestAccountDeletion(ctx, userID); err != nil {
		return err
	}

	as.mCounter.WithLabelValues("account_deletion_requested_total").Inc()

	return nil
}
