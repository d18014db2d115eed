package policy

const SelectActivePolicy = `
	SELECT id, kind, version, content, retention_days, active, updated_at
	FROM policies
	WHERE kind = $1 AND active
	ORDER BY updated_at DESC
	LIMIT 1
`
