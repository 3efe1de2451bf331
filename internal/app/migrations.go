// Package app — migrations.go: SQL-миграции, встроенные в код
// для упрощения деплоя.
package app

var migration001Ratings = `
CREATE TABLE IF NOT EXISTS ratings (
    id UUID PRIMARY KEY,
    vibe_id UUID NOT NULL,
    author_id UUID NOT NULL,
    emoji VARCHAR(16) NOT NULL,
    value INTEGER NOT NULL CHECK (value BETWEEN 1 AND 5),
    review TEXT NOT NULL DEFAULT '',
    boost_count INTEGER NOT NULL DEFAULT 0,
    dampen_count INTEGER NOT NULL DEFAULT 0,
    net_score INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_ratings_vibe_author ON ratings(vibe_id, author_id);
CREATE INDEX IF NOT EXISTS idx_ratings_author ON ratings(author_id);
CREATE INDEX IF NOT EXISTS idx_ratings_vibe ON ratings(vibe_id);
`

var migration002Points = `
CREATE TABLE IF NOT EXISTS user_points (
    id BIGSERIAL PRIMARY KEY,
    user_id UUID UNIQUE NOT NULL,
    current_balance BIGINT NOT NULL DEFAULT 0 CHECK (current_balance >= 0),
    total_earned BIGINT NOT NULL DEFAULT 0,
    protected_points BIGINT NOT NULL DEFAULT 0,
    level INTEGER NOT NULL DEFAULT 1,
    karma_score INTEGER NOT NULL DEFAULT 0,
    daily_dampen_count INTEGER NOT NULL DEFAULT 0,
    current_streak INTEGER NOT NULL DEFAULT 0,
    last_active_date DATE,
    last_reset_date DATE NOT NULL DEFAULT CURRENT_DATE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_user_points_user_id ON user_points(user_id);

CREATE TABLE IF NOT EXISTS point_transactions (
    id BIGSERIAL PRIMARY KEY,
    user_id UUID NOT NULL,
    counterparty_id UUID,
    amount BIGINT NOT NULL,
    balance_after BIGINT NOT NULL,
    action VARCHAR(32) NOT NULL,
    rating_id UUID,
    metadata JSONB,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_point_tx_user ON point_transactions(user_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_point_tx_rating ON point_transactions(rating_id);
`

var migration003Votes = `
CREATE TABLE IF NOT EXISTS rating_votes (
    id BIGSERIAL PRIMARY KEY,
    rating_id UUID NOT NULL REFERENCES ratings(id),
    voter_id UUID NOT NULL,
    vote_kind VARCHAR(10) NOT NULL CHECK (vote_kind IN ('boost', 'dampen')),
    points BIGINT NOT NULL DEFAULT 0,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    UNIQUE (rating_id, voter_id)
);
CREATE INDEX IF NOT EXISTS idx_rating_votes_rating ON rating_votes(rating_id);
CREATE INDEX IF NOT EXISTS idx_rating_votes_voter ON rating_votes(voter_id);
`

var migration004Snapshots = `
CREATE TABLE IF NOT EXISTS point_daily_snapshots (
    id BIGSERIAL PRIMARY KEY,
    user_id UUID NOT NULL,
    snapshot_date DATE NOT NULL,
    balance BIGINT NOT NULL,
    total_earned BIGINT NOT NULL,
    protected_points BIGINT NOT NULL,
    level INTEGER NOT NULL,
    karma_score INTEGER NOT NULL,
    current_streak INTEGER NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    UNIQUE (user_id, snapshot_date)
);
`
