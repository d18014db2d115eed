package folder

const (
	columns = `id, owner_id, parent_id, name, path, created_at, deleted, deleted_at`

	SelectFolderByID = `
		SELECT ` + columns + `
		FROM folders
		WHERE id = $1
	`
	LockFolderByID = `
		SELECT ` + columns + `
		FROM folders
		WHERE id = $1
		FOR UPDATE
	`
	LockFolderByIDShared = `
		SELECT ` + columns + `
		FROM folders
		WHERE id = $1
		FOR SHARE
	`
	SelectRootFolders = `
		SELECT ` + columns + `
		FROM folders
		WHERE owner_id = $1 AND parent_id IS NULL AND NOT deleted
		ORDER BY name
	`
	SelectChildFolders = `
		SELECT ` + columns + `
		FROM folders
		WHERE parent_id = $1 AND ($2 OR NOT deleted)
		ORDER BY name
	`
	SelectOwnerFolders = `
		SELECT ` + columns + `
		FROM folders
		WHERE owner_id = $1 AND NOT deleted
		ORDER BY path
	`
	ExistsActiveName = `
		SELECT EXISTS (
			SELECT 1
			FROM folders
			WHERE owner_id = $1
			  AND parent_id IS NOT DISTINCT FROM $2
			  AND name = $3
			  AND NOT deleted
			  AND ($4::uuid IS NULL OR id <> $4)
		)
	`
	InsertFolder = `
		INSERT INTO folders (owner_id, parent_id, name, path, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + columns
	UpdatePlacement = `
		UPDATE folders
		SET parent_id = $2,
		    name = $3,
		    path = $4
		WHERE id = $1
	`
	UpdatePath = `
		UPDATE folders
		SET path = $2
		WHERE id = $1
	`
	MarkDeleted = `
		UPDATE folders
		SET deleted = true,
		    deleted_at = $2
		WHERE id = $1 AND NOT deleted
	`
	SelectPurgeableFolders = `
		SELECT id
		FROM folders
		WHERE deleted AND deleted_at <= $1
		ORDER BY length(path) DESC
	`
	DeletePurgeableFolder = `
		DELETE FROM folders f
		WHERE f.id = $1
		  AND f.deleted
		  AND f.deleted_at <= $2
		  AND NOT EXISTS (SELECT 1 FROM folders c WHERE c.parent_id = f.id)
	`
)
