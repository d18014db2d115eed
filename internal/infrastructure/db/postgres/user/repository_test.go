package user

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "filevault-api/internal/domain/user"
)

var userColumns = []string{
	"id", "email", "name", "quota_bytes", "used_bytes", "created_at", "deletion_requested", "deletion_requested_at",
	"terms_version", "terms_accepted_at",
}

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		mock.Close()
	})
	return mock
}

func TestRepository_FetchUserByID(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	tests := []struct {
		name string
		rows *pgxmock.Rows
		want *domain.User
	}{
		{
			name: "found",
			rows: pgxmock.NewRows(userColumns).
				AddRow(id, "a@example.com", "Ann", int64(100), int64(40), created, false, (*time.Time)(nil), "v1", &created),
			want: &domain.User{
				UUID: id, Email: "a@example.com", Name: "Ann", QuotaBytes: 100, UsedBytes: 40, CreatedAt: created,
				TermsVersion: "v1", TermsAcceptedAt: &created,
			},
		},
		{
			name: "missing",
			rows: pgxmock.NewRows(userColumns),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := newMock(t)
			mock.ExpectQuery(regexp.QuoteMeta(SelectUserByID)).WithArgs(id).WillReturnRows(tt.rows)

			got, err := NewRepository(mock).FetchUserByID(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRepository_CreateUser(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	t.Run("inserts with the given id", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery(regexp.QuoteMeta(InsertUser)).
			WithArgs(id, "a@example.com", "Ann", int64(1024)).
			WillReturnRows(pgxmock.NewRows(userColumns).
				AddRow(id, "a@example.com", "Ann", int64(1024), int64(0), time.Now(), false, (*time.Time)(nil), "", (*time.Time)(nil)))

		u, err := NewRepository(mock).CreateUser(ctx, domain.User{UUID: id, Email: "a@example.com", Name: "Ann", QuotaBytes: 1024})
		require.NoError(t, err)
		assert.Equal(t, id, u.UUID)
		assert.Equal(t, uint64(1024), u.QuotaBytes)
	})

	t.Run("duplicate email", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery(regexp.QuoteMeta(InsertUser)).
			WithArgs(id, "a@example.com", "Ann", int64(1024)).
			WillReturnError(&pgconn.PgError{Code: "23505"})

		_, err := NewRepository(mock).CreateUser(ctx, domain.User{UUID: id, Email: "a@example.com", Name: "Ann", QuotaBytes: 1024})
		assert.ErrorIs(t, err, domain.ErrEmailTaken)
	})
}

func TestRepository_AddUsedBytes(t *testing.T) {
	mock := newMock(t)
	id := uuid.New()
	mock.ExpectExec(regexp.QuoteMeta(AddUsedBytes)).WithArgs(id, int64(-50)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, NewRepository(mock).AddUsedBytes(context.Background(), id, -50))
}

func TestRepository_Purge(t *testing.T) {
	ctx := context.Background()
	cutoff := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	a, b := uuid.New(), uuid.New()

	mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta(SelectPurgeableUsers)).WithArgs(cutoff).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(a).AddRow(b))
	mock.ExpectExec(regexp.QuoteMeta(DeletePurgeableUser)).WithArgs(a, cutoff).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec(regexp.QuoteMeta(DeletePurgeableUser)).WithArgs(b, cutoff).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	repo := NewRepository(mock)
	ids, err := repo.FetchPurgeableUsers(ctx, cutoff)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{a, b}, ids)

	ok, err := repo.PurgeUser(ctx, a, cutoff)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.PurgeUser(ctx, b, cutoff)
	require.NoError(t, err)
	assert.False(t, ok, "a cancelled or newer request is left alone")
}

func TestRepository_SetTermsAcceptance(t *testing.T) {
	id := uuid.New()
	at := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)

	mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta(SetTermsAcceptance)).WithArgs(id, "v3", &at).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(regexp.QuoteMeta(SetTermsAcceptance)).WithArgs(id, "", (*time.Time)(nil)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	repo := NewRepository(mock)
	require.NoError(t, repo.SetTermsAcceptance(context.Background(), id, "v3", &at))
	require.NoError(t, repo.SetTermsAcceptance(context.Background(), id, "", nil))
}
