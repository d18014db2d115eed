package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"filevault-api/internal/application/ports"
	"filevault-api/internal/domain/audit"
	"filevault-api/internal/domain/policy"
)

// TermsService serves the terms of use and records each account's acceptance. Nothing is gated
// while no terms are published.
type TermsService struct {
	tm        ports.TxManager
	policies  policy.Repository
	lifecycle ports.LifecycleService
	clock     ports.Clock
	audit     ports.AuditSink
	mCounter  *prometheus.CounterVec
}

func NewTermsService(
	tm ports.TxManager,
	policies policy.Repository,
	lifecycle ports.LifecycleService,
	clock ports.Clock,
	auditSink ports.AuditSink,
	mCounter *prometheus.CounterVec,
) ports.TermsService {
	return &TermsService{
		tm:        tm,
		policies:  policies,
		lifecycle: lifecycle,
		clock:     clock,
		audit:     auditSink,
		mCounter:  mCounter,
	}
}

func (ts *TermsService) CurrentTerms(ctx context.Context) (*policy.Policy, error) {
	p, err := ts.policies.FetchActivePolicy(ctx, policy.KindTerms)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrNotFoundOrForbidden
	}
	return p, nil
}

func (ts *TermsService) TermsStatus(ctx context.Context, userID uuid.UUID) (*ports.TermsStatus, error) {
	current, err := ts.CurrentTerms(ctx)
	if err != nil {
		return nil, err
	}
	u, err := ts.tm.Users().FetchUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrNotFoundOrForbidden
	}

	return &ports.TermsStatus{
		Current:  current,
		User:     u,
		Accepted: u.AcceptedTerms(current.Version),
	}, nil
}

// RespondToTerms records acceptance of the current version. Declining requests deletion of the
// account, which cannot be undone by accepting later.
func (ts *TermsService) RespondToTerms(ctx context.Context, userID uuid.UUID, accept bool) (*ports.TermsStatus, error) {
	st, err := ts.TermsStatus(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !st.User.Active() {
		return nil, ErrInvalidTransition
	}

	now := ts.clock.Now()
	if !accept {
		if err := ts.lifecycle.RequestAccountDeletion(ctx, userID); err != nil {
			return nil, err
		}
		if err := ts.tm.Users().SetTermsAcceptance(ctx, userID, "", nil); err != nil {
			return nil, err
		}
		ts.audit.Emit(audit.New(now, &userID, audit.CategoryAccount, audit.SeverityWarning, "terms_declined", st.Current.Version))
		ts.mCounter.WithLabelValues("terms_declined_total").Inc()

		return ts.TermsStatus(ctx, userID)
	}

	if !st.Accepted {
		if err := ts.tm.Users().SetTermsAcceptance(ctx, userID, st.Current.Version, &now); err != nil {
			return nil, err
		}
		ts.audit.Emit(audit.New(now, &userID, audit.CategoryAccount, audit.SeverityInfo, "terms_accepted", st.Current.Version))
		ts.mCounter.WithLabelValues("terms_accepted_total").Inc()
	}

	return ts.TermsStatus(ctx, userID)
}

// CheckTermsAccepted fails with ErrTermsNotAccepted unless the account accepted the current
// version.
func (ts *TermsService) CheckTermsAccepted(ctx context.Context, userID uuid.UUID) error {
	current, err := ts.policies.FetchActivePolicy(ctx, policy.KindTerms)
	if err != nil {
		return err
	}
	if current == nil {
		return nil
	}

	u, err := ts.tm.Users().FetchUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if !u.AcceptedTerms(current.Version) {
		return ErrTermsNotAccepted
	}
	return nil
}
