package store

// SQL query constants. PostgresStore methods reference these.

const connectionColumns = `id, user_id, marketplace_id, connection_status,
	access_token, refresh_token, token_expires_at, last_sync_at, error_message,
	created_at, updated_at`

const (
	queryGetConnection = `
		SELECT ` + connectionColumns + `
		FROM marketplace_connections
		WHERE user_id = $1 AND marketplace_id = $2`

	queryListConnectionsByUser = `
		SELECT ` + connectionColumns + `
		FROM marketplace_connections
		WHERE user_id = $1
		ORDER BY marketplace_id`

	queryListExpiringConnections = `
		SELECT ` + connectionColumns + `
		FROM marketplace_connections
		WHERE connection_status = 'active'
			AND token_expires_at IS NOT NULL
			AND token_expires_at <= $1
		ORDER BY token_expires_at`

	queryUpsertConnection = `
		INSERT INTO marketplace_connections (
			user_id, marketplace_id, connection_status,
			access_token, refresh_token, token_expires_at,
			last_sync_at, error_message, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())
		ON CONFLICT (user_id, marketplace_id) DO UPDATE SET
			connection_status = EXCLUDED.connection_status,
			access_token = EXCLUDED.access_token,
			refresh_token = EXCLUDED.refresh_token,
			token_expires_at = EXCLUDED.token_expires_at,
			last_sync_at = EXCLUDED.last_sync_at,
			error_message = EXCLUDED.error_message,
			updated_at = now()
		RETURNING id, created_at, updated_at`

	querySetStatus = `
		INSERT INTO marketplace_connections (
			user_id, marketplace_id, connection_status,
			error_message, last_sync_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, now(), now())
		ON CONFLICT (user_id, marketplace_id) DO UPDATE SET
			connection_status = EXCLUDED.connection_status,
			error_message = EXCLUDED.error_message,
			last_sync_at = COALESCE(EXCLUDED.last_sync_at, marketplace_connections.last_sync_at),
			access_token = CASE WHEN $6::boolean THEN NULL ELSE marketplace_connections.access_token END,
			refresh_token = CASE WHEN $6::boolean THEN NULL ELSE marketplace_connections.refresh_token END,
			token_expires_at = CASE WHEN $6::boolean THEN NULL ELSE marketplace_connections.token_expires_at END,
			updated_at = now()`

	queryUpdateTokens = `
		UPDATE marketplace_connections SET
			access_token = $3,
			refresh_token = COALESCE($4, refresh_token),
			token_expires_at = $5,
			error_message = NULL,
			updated_at = now()
		WHERE user_id = $1
			AND marketplace_id = $2
			AND connection_status = 'active'`

	queryMarkRefreshFailed = `
		UPDATE marketplace_connections SET
			connection_status = 'disconnected',
			error_message = $3,
			updated_at = now()
		WHERE user_id = $1
			AND marketplace_id = $2
			AND connection_status = 'active'
			AND updated_at = $4`
)
