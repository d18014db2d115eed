package user

import (
	domain "filevault-api/internal/domain/user"
)

func fromDBModel(model *User) *domain.User {
	return &domain.User{
		UUID:       model.ID,
		Email:      model.Email,
		Name:       model.Name,
		QuotaBytes: uint64(max(model.QuotaBytes, 0)),
		UsedBytes:  uint64(max(model.UsedBytes, 0)),

		CreatedAt: model.CreatedAt,

		DeletionRequested:   model.DeletionRequested,
		DeletionRequestedAt: model.DeletionRequestedAt,

		TermsVersion:    model.TermsVersion,
		TermsAcceptedAt: model.TermsAcceptedAt,
	}
}
