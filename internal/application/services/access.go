package services

import (
	"context"

	"github.com/google/uuid"

	"filevault-api/internal/application/ports"
	"filevault-api/internal/domain/access"
	"filevault-api/internal/domain/file"
	"filevault-api/internal/domain/folder"
)

type AccessService struct {
	store ports.Store
}

func NewAccessService(store ports.Store) ports.AccessService {
	return &AccessService{store: store}
}

func (as *AccessService) ResolveFolderAccess(ctx context.Context, actorID, folderID uuid.UUID) (access.Result, error) {
	return resolveFolderAccess(ctx, as.store, actorID, folderID)
}

func (as *AccessService) ResolveFileAccess(ctx context.Context, actorID, fileID uuid.UUID) (access.Result, error) {
	f, err := as.store.Files().FetchFileByID(ctx, fileID)
	if err != nil {
		return access.Denied(), err
	}
	return resolveFileAccess(ctx, as.store, actorID, f)
}

// resolveFolderAccess walks from the folder up its parent chain. At each level ownership
// grants everything and an active grant to the actor grants its bits; the first hit wins.
// Deleted targets, unknown or deletion-requested actors and a chain ending at the root all
// resolve to denied. A missing or deleted ancestor ends the walk as "no share".
func resolveFolderAccess(ctx context.Context, st ports.Store, actorID, folderID uuid.UUID) (access.Result, error) {
	actor, err := st.Users().FetchUserByID(ctx, actorID)
	if err != nil {
		return access.Denied(), err
	}
	if !actor.Active() {
		return access.Denied(), nil
	}

	target, err := st.Folders().FetchFolderByID(ctx, folderID)
	if err != nil {
		return access.Denied(), err
	}
	if target == nil || target.Deleted {
		return access.Denied(), nil
	}

	return walkUp(ctx, st, actorID, target)
}

func walkUp(ctx context.Context, st ports.Store, actorID uuid.UUID, from *folder.Folder) (access.Result, error) {
	visited := make(map[uuid.UUID]struct{})
	current := from
	for current != nil && !current.Deleted {
		if _, seen := visited[current.UUID]; seen {
			return access.Denied(), nil
		}
		visited[current.UUID] = struct{}{}

		if current.OwnerID == actorID {
			return access.Owned(), nil
		}

		grant, err := st.FolderGrants().FetchActiveGrant(ctx, current.UUID, actorID)
		if err != nil {
			return access.Denied(), err
		}
		if grant != nil {
			return access.Shared(grant.Permissions), nil
		}

		if current.ParentID == nil {
			break
		}
		current, err = st.Folders().FetchFolderByID(ctx, *current.ParentID)
		if err != nil {
			return access.Denied(), err
		}
	}

	return access.Denied(), nil
}

// resolveFileAccess grants the owner everything, the containing folder's grant to anyone
// who resolves it, and read-only content access to everyone for public files.
func resolveFileAccess(ctx context.Context, st ports.Store, actorID uuid.UUID, f *file.File) (access.Result, error) {
	if f == nil || f.Deleted {
		return access.Denied(), nil
	}

	actor, err := st.Users().FetchUserByID(ctx, actorID)
	if err != nil {
		return access.Denied(), err
	}
	if actor.Active() {
		if f.OwnerID == actorID {
			return access.Owned(), nil
		}
		if f.FolderID != nil {
			res, err := resolveFolderAccess(ctx, st, actorID, *f.FolderID)
			if err != nil {
				return access.Denied(), err
			}
			if res.Granted {
				res.Owner = false
				return res, nil
			}
		}
	}

	if f.Public {
		return access.Result{Granted: true, Permissions: access.ReadOnly()}, nil
	}

	return access.Denied(), nil
}

// hasSharedAncestor reports whether any strict ancestor of f carries an active grant for the
// actor. Missing parents end the walk with false.
func hasSharedAncestor(ctx context.Context, st ports.Store, actorID uuid.UUID, f *folder.Folder) (bool, error) {
	visited := map[uuid.UUID]struct{}{f.UUID: {}}
	parentID := f.ParentID
	for parentID != nil {
		if _, seen := visited[*parentID]; seen {
			return false, nil
		}
		visited[*parentID] = struct{}{}

		parent, err := st.Folders().FetchFolderByID(ctx, *parentID)
		if err != nil {
			return false, err
		}
		if parent == nil {
			return false, nil
		}

		grant, err := st.FolderGrants().FetchActiveGrant(ctx, parent.UUID, actorID)
		if err != nil {
			return false, err
		}
		if grant != nil {
			return true, nil
		}
		parentID = parent.ParentID
	}

	return false, nil
}
