package postgres

const (
	listTransactionsSQL = `
		SELECT id, user_id, date, type, category, client, description, amount::text
		FROM transactions
		WHERE user_id = $1
		ORDER BY seq, id`

	listCategoriesSQL = `
		SELECT id, user_id, name, type
		FROM categories
		WHERE user_id = $1
		ORDER BY seq, id`

	getEnterpriseSettingSQL = `
		SELECT user_id, enterprise_name
		FROM enterprise_settings
		WHERE user_id = $1`

	deleteTransactionsSQL = `DELETE FROM transactions WHERE user_id = $1`

	deleteCategoriesSQL = `DELETE FROM categories WHERE user_id = $1`

	upsertEnterpriseSettingSQL = `
		INSERT INTO enterprise_settings (user_id, enterprise_name, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (user_id) DO UPDATE
		SET enterprise_name = EXCLUDED.enterprise_name,
		    updated_at = EXCLUDED.updated_at`

	// Serializes replaces of one collection for one user; released at commit or rollback.
	advisoryLockSQL = `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`
)

var (
	transactionColumns = []string{"user_id", "id", "seq", "date", "type", "category", "client", "description", "amount"}
	categoryColumns    = []string{"user_id", "id", "seq", "name", "type"}
)
