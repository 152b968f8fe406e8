package migrations

import "jobconsole/common/database/schema"

var CreateConsoleActivityTable = schema.Migration{
	Version:     1,
	Description: "Create console_activity table",
	Up: `
		CREATE TABLE IF NOT EXISTS console_activity (
			id UUID,
			kind LowCardinality(String),
			job_id String,
			status LowCardinality(String),
			session_id String,
			occurred_at DateTime64(3, 'UTC'),
			received_at DateTime64(3, 'UTC') DEFAULT now64(3)
		) ENGINE = ReplacingMergeTree(received_at)
		PARTITION BY toYYYYMM(occurred_at)
		ORDER BY (kind, occurred_at, id)
		SETTINGS index_granularity = 8192
	`,
	Down: `DROP TABLE IF EXISTS console_activity`,
}

// All lists every migration in version order.
func All() []schema.Migration {
	return []schema.Migration{
		CreateConsoleActivityTable,
	}
}
