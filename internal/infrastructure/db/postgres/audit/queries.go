package audit

const InsertEvent = `
	INSERT INTO audit_events (id, ts, actor_id, category, severity, action, detail, metadata)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	ON CONFLICT (id) DO NOTHING
`
