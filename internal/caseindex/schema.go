package caseindex

// schema is the read model the index queries. Production points the index at
// a replica that already carries these tables; EnsureSchema creates them for
// development databases and tests.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS case_types (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		target_date_warning_days INTEGER,
		fatal_date_warning_days INTEGER
	)`,
	`CREATE TABLE IF NOT EXISTS cases (
		id TEXT PRIMARY KEY,
		identification TEXT NOT NULL DEFAULT '',
		case_type_id TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		owner_id TEXT,
		closed_at TIMESTAMP,
		target_date DATE,
		fatal_date DATE
	)`,
	`CREATE TABLE IF NOT EXISTS tasks (
		id TEXT PRIMARY KEY,
		case_id TEXT NOT NULL,
		name TEXT NOT NULL DEFAULT '',
		assignee_id TEXT,
		closed_at TIMESTAMP,
		due_date DATE
	)`,
	`CREATE TABLE IF NOT EXISTS documents (
		id TEXT PRIMARY KEY,
		case_id TEXT NOT NULL,
		title TEXT NOT NULL DEFAULT '',
		url TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		display_name TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS user_groups (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS idx_cases_type_open ON cases (case_type_id) WHERE closed_at IS NULL`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_due_open ON tasks (due_date) WHERE closed_at IS NULL`,
}
