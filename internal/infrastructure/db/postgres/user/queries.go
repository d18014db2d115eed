package user

const (
	columns = `id, email, name, quota_bytes, used_bytes, created_at, deletion_requested, deletion_requested_at,
		COALESCE(terms_version, ''), terms_accepted_at`

	SelectUserByID = `
		SELECT ` + columns + `
		FROM users
		WHERE id = $1
	`
	SelectUserByEmail = `
		SELECT ` + columns + `
		FROM users
		WHERE lower(email) = lower($1)
	`
	LockUserByID = `
		SELECT ` + columns + `
		FROM users
		WHERE id = $1
		FOR UPDATE
	`
	InsertUser = `
		INSERT INTO users (id, email, name, quota_bytes)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + columns
	AddUsedBytes = `
		UPDATE users
		SET used_bytes = GREATEST(used_bytes + $2, 0)
		WHERE id = $1
	`
	MarkDeletionRequested = `
		UPDATE users
		SET deletion_requested = true,
		    deletion_requested_at = $2
		WHERE id = $1 AND NOT deletion_requested
	`
	// an empty version clears the acceptance
	SetTermsAcceptance = `
		UPDATE users
		SET terms_version = NULLIF($2, ''),
		    terms_accepted_at = $3
		WHERE id = $1
	`
	SelectPurgeableUsers = `
		SELECT id
		FROM users
		WHERE deletion_requested AND deletion_requested_at <= $1
		ORDER BY deletion_requested_at
	`
	DeletePurgeableUser = `
		DELETE FROM users
		WHERE id = $1 AND deletion_requested AND deletion_requested_at <= $2
	`
)
