// Package migrations embeds the schema migrations for each record store backend.
// Files are named NNNN_description.sql and applied in version order.
package migrations

import "embed"

// FS holds postgres/*.sql and bigquery/*.sql.
//
//go:embed postgres/*.sql bigquery/*.sql
var FS embed.FS
