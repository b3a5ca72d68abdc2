package store

// schemaDDL creates all tables on first open. Statements are
// idempotent so opening an existing database is a no-op.
const schemaDDL = `
CREATE TABLE IF NOT EXISTS global_sequence (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	next_val INTEGER NOT NULL DEFAULT 1
);
INSERT OR IGNORE INTO global_sequence (id, next_val) VALUES (1, 1);

CREATE TABLE IF NOT EXISTS sessions (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	lesson_id INTEGER NOT NULL,
	state TEXT NOT NULL,
	is_completed INTEGER NOT NULL DEFAULT 0,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL,
	UNIQUE (user_id, lesson_id)
);

CREATE TABLE IF NOT EXISTS messages (
	id TEXT PRIMARY KEY,
	session_id TEXT NOT NULL REFERENCES sessions(id),
	seq INTEGER NOT NULL,
	role TEXT NOT NULL,
	content TEXT NOT NULL,
	moment_id INTEGER NOT NULL,
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_messages_session ON messages(session_id, seq);

CREATE TABLE IF NOT EXISTS evaluations (
	id TEXT PRIMARY KEY,
	session_id TEXT NOT NULL REFERENCES sessions(id),
	seq INTEGER NOT NULL,
	moment_id INTEGER NOT NULL,
	target_id INTEGER NOT NULL,
	attempt INTEGER NOT NULL,
	question TEXT NOT NULL,
	answer TEXT NOT NULL,
	intent TEXT NOT NULL,
	evaluation TEXT NOT NULL,
	level INTEGER NOT NULL,
	mastery_delta REAL NOT NULL,
	delta_corrected INTEGER NOT NULL DEFAULT 0,
	score REAL NOT NULL,
	next_step TEXT NOT NULL,
	tags TEXT NOT NULL,
	feedback TEXT NOT NULL,
	hints TEXT NOT NULL,
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_evaluations_session ON evaluations(session_id, seq);

CREATE TABLE IF NOT EXISTS llm_requests (
	id TEXT PRIMARY KEY,
	seq INTEGER NOT NULL,
	model TEXT NOT NULL,
	purpose TEXT NOT NULL,
	input_tokens INTEGER NOT NULL,
	output_tokens INTEGER NOT NULL,
	latency_ms INTEGER NOT NULL,
	success INTEGER NOT NULL,
	error_message TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL
);
`
