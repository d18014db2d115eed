package terms

import (
	"time"

	"filevault-api/internal/application/ports"
	"filevault-api/internal/domain/policy"
)

type (
	Request struct {
		Accepted *bool `json:"accepted"`
	}

	Terms struct {
		Version   string    `json:"version"`
		Content   string    `json:"content"`
		UpdatedAt time.Time `json:"updated_at"`
	}

	Status struct {
		Accepted            bool       `json:"accepted"`
		CurrentVersion      string     `json:"current_version"`
		AcceptedVersion     string     `json:"accepted_version,omitempty"`
		AcceptedAt          *time.Time `json:"accepted_at,omitempty"`
		DeletionRequested   bool       `json:"deletion_requested"`
		DeletionRequestedAt *time.Time `json:"deletion_requested_at,omitempty"`
	}
)

func ToResponseTerms(p policy.Policy) Terms {
	return Terms{
		Version:   p.Version,
		Content:   p.Content,
		UpdatedAt: p.UpdatedAt,
	}
}

func ToResponseStatus(st ports.TermsStatus) Status {
	out := Status{
		Accepted:            st.Accepted,
		CurrentVersion:      st.Current.Version,
		DeletionRequested:   st.User.DeletionRequested,
		DeletionRequestedAt: st.User.DeletionRequestedAt,
	}
	if st.User.TermsVersion != "" {
		out.AcceptedVersion = st.User.TermsVersion
		out.AcceptedAt = st.User.TermsAcceptedAt
	}
	return out
}
