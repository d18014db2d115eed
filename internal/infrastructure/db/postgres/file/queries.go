package file

const (
	columns = `id, owner_id, folder_id, name, stored_name, size_bytes, hash, mime_type, public, created_at, deleted, deleted_at`

	SelectFileByID = `
		SELECT ` + columns + `
		FROM files
		WHERE id = $1
	`
	LockFileByID = `
		SELECT ` + columns + `
		FROM files
		WHERE id = $1
		FOR UPDATE
	`
	SelectFolderFiles = `
		SELECT ` + columns + `
		FROM files
		WHERE folder_id = $1 AND NOT deleted
		ORDER BY name
	`
	SelectRootFiles = `
		SELECT ` + columns + `
		FROM files
		WHERE owner_id = $1 AND folder_id IS NULL AND NOT deleted
		ORDER BY name
	`
	SelectActiveFiles = `
		SELECT ` + columns + `
		FROM files
		WHERE NOT deleted
		ORDER BY created_at
	`
	ExistsActiveName = `
		SELECT EXISTS (
			SELECT 1
			FROM files
			WHERE owner_id = $1
			  AND folder_id IS NOT DISTINCT FROM $2
			  AND name = $3
			  AND NOT deleted
		)
	`
	InsertFile = `
		INSERT INTO files (owner_id, folder_id, name, stored_name, size_bytes, hash, mime_type, public, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + columns
	UpdateVisibility = `
		UPDATE files
		SET public = $2
		WHERE id = $1 AND NOT deleted
	`
	RenameFile = `
		UPDATE files
		SET name = $2
		WHERE id = $1 AND NOT deleted
	`
	MarkDeleted = `
		UPDATE files
		SET deleted = true,
		    deleted_at = $2
		WHERE id = $1 AND NOT deleted
	`
	MarkFolderFilesDeleted = `
		UPDATE files
		SET deleted = true,
		    deleted_at = $2
		WHERE folder_id = $1 AND NOT deleted
		RETURNING owner_id, size_bytes
	`
	MarkOwnerFilesDeleted = `
		UPDATE files
		SET deleted = true,
		    deleted_at = $2
		WHERE owner_id = $1 AND NOT deleted
		RETURNING owner_id, size_bytes
	`
	SelectPurgeableFiles = `
		SELECT id
		FROM files
		WHERE deleted AND deleted_at <= $1
		ORDER BY deleted_at
	`
	DeletePurgeableFile = `
		DELETE FROM files
		WHERE id = $1 AND deleted AND deleted_at <= $2
		RETURNING stored_name
	`
	DeleteFolderFiles = `
		DELETE FROM files
		WHERE folder_id = $1
		RETURNING stored_name
	`
	DeleteOwnerFiles = `
		DELETE FROM files
		WHERE owner_id = $1
		   OR folder_id IN (SELECT id FROM folders WHERE owner_id = $1)
		RETURNING stored_name
	`
)
