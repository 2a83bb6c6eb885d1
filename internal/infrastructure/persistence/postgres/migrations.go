package postgres

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 001: CREATE SCHOLARSHIPS
// ══════════════════════════════════════════════════════════════════════════════

const migration001Up = `
-- Migration: Create scholarships catalog
-- Version: 001

CREATE TABLE IF NOT EXISTS scholarships (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    name VARCHAR(200) NOT NULL,
    provider VARCHAR(200) NOT NULL DEFAULT '',
    amount DECIMAL(12,2) NOT NULL DEFAULT 0,
    deadline TIMESTAMP WITH TIME ZONE NOT NULL,
    award_notification TIMESTAMP WITH TIME ZONE,
    applications INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    -- Requirement template (JSONB for flexibility)
    template JSONB NOT NULL DEFAULT '{
        "essay_required": false,
        "essay_prompt": "",
        "essay_word_limit": {"min": 0, "max": 0},
        "transcript_required": false,
        "recommendation_letters": 0,
        "portfolio_required": false,
        "extras": []
    }'::jsonb,

    CONSTRAINT valid_amount CHECK (amount >= 0),
    CONSTRAINT valid_applications CHECK (applications >= 0)
);

CREATE INDEX IF NOT EXISTS idx_scholarships_deadline ON scholarships(deadline);
CREATE INDEX IF NOT EXISTS idx_scholarships_name ON scholarships(LOWER(name));
`

const migration001Down = `
DROP TABLE IF EXISTS scholarships;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 002: CREATE APPLICATIONS
// ══════════════════════════════════════════════════════════════════════════════

const migration002Up = `
-- Migration: Create applications
-- Version: 002
-- One row per aggregate; owned collections live in JSONB columns.

CREATE TABLE IF NOT EXISTS applications (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    owner_id UUID NOT NULL,
    scholarship_id UUID NOT NULL REFERENCES scholarships(id),
    status VARCHAR(20) NOT NULL DEFAULT 'in_progress',
    progress INTEGER NOT NULL DEFAULT 0,
    requirements JSONB NOT NULL DEFAULT '[]'::jsonb,
    essay JSONB NOT NULL DEFAULT '{"drafts": [], "current_draft_index": -1, "word_limit": {"min": 0, "max": 0}}'::jsonb,
    documents JSONB NOT NULL DEFAULT '[]'::jsonb,
    submitted_at TIMESTAMP WITH TIME ZONE,
    confirmation_number VARCHAR(60) NOT NULL DEFAULT '',
    decision_date TIMESTAMP WITH TIME ZONE,
    decision_expected_by TIMESTAMP WITH TIME ZONE,
    award_details JSONB,
    won_at TIMESTAMP WITH TIME ZONE,
    rejected_at TIMESTAMP WITH TIME ZONE,
    feedback TEXT NOT NULL DEFAULT '',
    next_steps JSONB NOT NULL DEFAULT '[]'::jsonb,
    notes TEXT NOT NULL DEFAULT '',
    reminders JSONB NOT NULL DEFAULT '{"email": true, "sms": false, "push": true, "schedules": []}'::jsonb,
    timeline JSONB NOT NULL DEFAULT '[]'::jsonb,
    last_activity_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    version INTEGER NOT NULL DEFAULT 1,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    -- Exactly one application per (owner, scholarship)
    CONSTRAINT uniq_owner_scholarship UNIQUE (owner_id, scholarship_id),
    CONSTRAINT valid_status CHECK (status IN ('in_progress', 'submitted', 'won', 'rejected', 'withdrawn')),
    CONSTRAINT valid_progress CHECK (progress >= 0 AND progress <= 100),
    CONSTRAINT valid_version CHECK (version >= 1)
);

CREATE INDEX IF NOT EXISTS idx_applications_owner ON applications(owner_id);
CREATE INDEX IF NOT EXISTS idx_applications_owner_status ON applications(owner_id, status);
CREATE INDEX IF NOT EXISTS idx_applications_scholarship ON applications(scholarship_id);
CREATE INDEX IF NOT EXISTS idx_applications_last_activity ON applications(owner_id, last_activity_at DESC);
`

const migration002Down = `
DROP TABLE IF EXISTS applications;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 003: CREATE USERS AND SESSIONS
// ══════════════════════════════════════════════════════════════════════════════

const migration003Up = `
-- Migration: Create users and sessions for the HTTP auth glue
-- Version: 003

CREATE TABLE IF NOT EXISTS users (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    email VARCHAR(255) NOT NULL UNIQUE,
    password_hash VARCHAR(100) NOT NULL,
    display_name VARCHAR(100) NOT NULL DEFAULT '',
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_users_email ON users(LOWER(email));

CREATE TABLE IF NOT EXISTS sessions (
    token VARCHAR(64) PRIMARY KEY,
    user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    expires_at TIMESTAMP WITH TIME ZONE NOT NULL,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id);
CREATE INDEX IF NOT EXISTS idx_sessions_expires ON sessions(expires_at);
`

const migration003Down = `
DROP TABLE IF EXISTS sessions;
DROP TABLE IF EXISTS users;
`

// GetMigrations returns all embedded migrations.
func GetMigrations() []Migration {
	return []Migration{
		{
			Version: 1,
			Name:    "create_scholarships",
			UpSQL:   migration001Up,
			DownSQL: migration001Down,
		},
		{
			Version: 2,
			Name:    "create_applications",
			UpSQL:   migration002Up,
			DownSQL: migration002Down,
		},
		{
			Version: 3,
			Name:    "create_users_sessions",
			UpSQL:   migration003Up,
			DownSQL: migration003Down,
		},
	}
}
