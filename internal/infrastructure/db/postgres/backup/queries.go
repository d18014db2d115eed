package backup

const (
	columns = `id, user_id, kind, location, size_bytes, status, created_at`

	InsertBackup = `
		INSERT INTO backups (user_id, kind, location, size_bytes, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + columns
	SelectUserBackups = `
		SELECT ` + columns + `
		FROM backups
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	SelectUserBackup = `
		SELECT ` + columns + `
		FROM backups
		WHERE id = $1 AND user_id = $2
	`
	DeleteUserBackup = `
		DELETE FROM backups
		WHERE id = $1 AND user_id = $2
	`
)
