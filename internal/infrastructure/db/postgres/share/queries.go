package share

const (
	shareColumns = `id, file_id, token, created_by, expires_at, max_accesses, accesses, active, created_at`

	InsertFileShare = `
		INSERT INTO file_shares (file_id, token, created_by, expires_at, max_accesses, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + shareColumns
	SelectFileShareByToken = `
		SELECT ` + shareColumns + `
		FROM file_shares
		WHERE token = $1
	`
	ConsumeFileShare = `
		UPDATE file_shares s
		SET accesses = s.accesses + 1
		FROM files f
		WHERE s.token = $1
		  AND s.active
		  AND f.id = s.file_id
		  AND NOT f.deleted
		  AND (s.expires_at IS NULL OR s.expires_at > $2)
		  AND (s.max_accesses IS NULL OR s.accesses < s.max_accesses)
		RETURNING s.id, s.file_id, s.token, s.created_by, s.expires_at, s.max_accesses, s.accesses, s.active, s.created_at
	`
	DeactivateOwnerShares = `
		UPDATE file_shares
		SET active = false
		WHERE created_by = $1 AND active
	`

	grantColumns = `id, folder_id, owner_id, grantee_id, can_edit, can_delete, can_reshare, active, created_at`

	InsertGrant = `
		INSERT INTO folder_grants (folder_id, owner_id, grantee_id, can_edit, can_delete, can_reshare, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + grantColumns
	SelectActiveGrant = `
		SELECT g.id, g.folder_id, g.owner_id, g.grantee_id, g.can_edit, g.can_delete, g.can_reshare, g.active, g.created_at
		FROM folder_grants g
		JOIN users u ON u.id = g.grantee_id
		WHERE g.folder_id = $1 AND g.grantee_id = $2 AND g.active AND NOT u.deletion_requested
	`
	SelectGranteeGrants = `
		SELECT g.id, g.folder_id, g.owner_id, g.grantee_id, g.can_edit, g.can_delete, g.can_reshare, g.active, g.created_at
		FROM folder_grants g
		JOIN users u ON u.id = g.grantee_id
		WHERE g.grantee_id = $1 AND g.active AND NOT u.deletion_requested
		ORDER BY g.created_at
	`
	DeactivateGrant = `
		UPDATE folder_grants
		SET active = false
		WHERE id = $1
	`
	DeactivateUserGrants = `
		UPDATE folder_grants
		SET active = false
		WHERE (owner_id = $1 OR grantee_id = $1) AND active
	`
)
