package store

// Configuration parameter names in the config table. The spellings are
// fixed: existing deployments already hold rows under them.
const (
	paramMasterPwd       = "masterPwd"
	paramLastUpdateMPass = "lastupdatempass"
)

const (
	getUserPassByID = `SELECT user_id, m_pass, m_key, last_update_m_pass, is_changed_pass, updated_at
		FROM user_mpass
		WHERE user_id = $1;`

	createUserPass = `INSERT INTO user_mpass (user_id, m_pass, m_key, last_update_m_pass, is_changed_pass)
		VALUES ($1, $2, $3, $4, $5);`

	getConfigParameter = `SELECT value
		FROM config
		WHERE parameter = $1;`

	upsertConfigParameter = `INSERT INTO config (parameter, value)
		VALUES ($1, $2)
		ON CONFLICT (parameter) DO UPDATE SET value = EXCLUDED.value;`
)
