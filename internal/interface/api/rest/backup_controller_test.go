package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"filevault-api/internal/application/services"
	"filevault-api/internal/domain/backup"
	backupDTO "filevault-api/internal/interface/api/rest/dto/backup"
)

func TestBackupController_Trigger(t *testing.T) {
	rec := &backup.Backup{UUID: uuid.New(), Kind: backup.KindManifest, Location: "backups/x.json.gz", SizeBytes: 2048, CreatedAt: testNow}

	tests := []struct {
		name       string
		trigger    func(ctx context.Context, actorID uuid.UUID) (*backup.Backup, error)
		wantStatus int
		wantState  string
	}{
		{
			name: "201 completed",
			trigger: func(ctx context.Context, actorID uuid.UUID) (*backup.Backup, error) {
				b := *rec
				b.UserID, b.Status = &actorID, backup.StatusCompleted
				return &b, nil
			},
			wantStatus: http.StatusCreated,
			wantState:  "completed",
		},
		{
			name: "500 failed run still reports its record",
			trigger: func(ctx context.Context, actorID uuid.UUID) (*backup.Backup, error) {
				b := *rec
				b.Status = backup.StatusFailed
				return &b, errors.New("bucket gone")
			},
			wantStatus: http.StatusInternalServerError,
		},
		{
			name: "500 nothing recorded",
			trigger: func(ctx context.Context, actorID uuid.UUID) (*backup.Backup, error) {
				return nil, errors.New("db down")
			},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			env := setupRouter(t, fakes{backups: &FakeBackupService{TriggerBackupFunc: tt.trigger}})
			rr := doReq(t, env.router, http.MethodPost, RouteBackups, nil, env.authHeader())
			require.Equal(t, tt.wantStatus, rr.Code, rr.Body.String())
			if tt.wantState != "" {
				var got backupDTO.Backup
				require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
				assert.Equal(t, tt.wantState, got.Status)
				assert.Equal(t, "2.0 kB", got.Size)
			} else {
				assert.Equal(t, "failed to create a backup", errorOf(t, rr))
			}
		})
	}
}

func TestBackupController_ListGetDelete(t *testing.T) {
	id := uuid.New()
	var listedFor uuid.UUID

	env := setupRouter(t, fakes{backups: &FakeBackupService{
		ListBackupsFunc: func(ctx context.Context, actorID uuid.UUID) (backup.Backups, error) {
			listedFor = actorID
			return backup.Backups{{UUID: id, Status: backup.StatusCompleted}}, nil
		},
		GetBackupFunc: func(ctx context.Context, actorID, backupID uuid.UUID) (*backup.Backup, error) {
			if backupID != id {
				return nil, services.ErrNotFoundOrForbidden
			}
			return &backup.Backup{UUID: id, Status: backup.StatusCompleted}, nil
		},
		DeleteBackupFunc: func(ctx context.Context, actorID, backupID uuid.UUID) error {
			if backupID != id {
				return services.ErrNotFoundOrForbidden
			}
			return nil
		},
	}})

	rr := doReq(t, env.router, http.MethodGet, RouteBackups, nil, env.authHeader())
	require.Equal(t, http.StatusOK, rr.Code)
	var list backupDTO.List
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	assert.Equal(t, 1, list.Count)
	assert.Equal(t, env.actor.UserID, listedFor)

	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
	}{
		{name: "get own", method: http.MethodGet, path: RouteBackups + "/" + id.String(), wantStatus: http.StatusOK},
		{name: "get other", method: http.MethodGet, path: RouteBackups + "/" + uuid.NewString(), wantStatus: http.StatusNotFound},
		{name: "get bad id", method: http.MethodGet, path: RouteBackups + "/nope", wantStatus: http.StatusBadRequest},
		{name: "delete own", method: http.MethodDelete, path: RouteBackups + "/" + id.String(), wantStatus: http.StatusNoContent},
		{name: "delete other", method: http.MethodDelete, path: RouteBackups + "/" + uuid.NewString(), wantStatus: http.StatusNotFound},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			rr := doReq(t, env.router, tt.method, tt.path, nil, env.authHeader())
			assert.Equal(t, tt.wantStatus, rr.Code)
		})
	}

	rr = doReq(t, env.router, http.MethodGet, RouteBackups, nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
