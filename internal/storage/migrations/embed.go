package migrations

import "embed"

// PostgresFS embeds the scan_log schema.
//
//go:embed postgres/*.sql
var PostgresFS embed.FS

// ClickhouseFS embeds the price_snapshots schema.
//
//go:embed clickhouse/*.sql
var ClickhouseFS embed.FS
