package postgres

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"
)

// EnsureSchema creates the engine's tables and the indexes its concurrency
// guarantees rely on. The marketplace tables (agents, courses, enrollments)
// are included so a fresh environment is self-contained; in production they
// are owned by the marketplace service.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, schemaDDL)
	return err
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS coupon_types (
    id                 UUID PRIMARY KEY,
    type_code          TEXT NOT NULL UNIQUE,
    type_name          TEXT NOT NULL,
    discount_kind      TEXT NOT NULL,
    max_discount_limit BIGINT NOT NULL,
    is_active          BOOLEAN NOT NULL DEFAULT TRUE,
    created_at         TIMESTAMPTZ NOT NULL,
    updated_at         TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS coupons (
    id                  UUID PRIMARY KEY,
    code                TEXT NOT NULL,
    coupon_type_id      UUID NOT NULL REFERENCES coupon_types(id),
    owner_agent_id      UUID NOT NULL,
    discount_value      BIGINT NOT NULL,
    max_usage_count     BIGINT,
    current_usage_count BIGINT NOT NULL DEFAULT 0,
    valid_from          TIMESTAMPTZ NOT NULL,
    valid_until         TIMESTAMPTZ NOT NULL,
    is_active           BOOLEAN NOT NULL DEFAULT TRUE,
    created_at          TIMESTAMPTZ NOT NULL,
    updated_at          TIMESTAMPTZ NOT NULL,
    CONSTRAINT coupons_usage_within_cap
        CHECK (max_usage_count IS NULL OR current_usage_count <= max_usage_count)
);

-- The second concurrent commit of the same agent+type+value combination must
-- fail, not corrupt data: uniqueness is scoped to active coupons so a retired
-- code can be re-issued.
CREATE UNIQUE INDEX IF NOT EXISTS coupons_active_code_key
    ON coupons (code) WHERE is_active;

CREATE TABLE IF NOT EXISTS coupon_assignments (
    id         UUID PRIMARY KEY,
    coupon_id  UUID NOT NULL REFERENCES coupons(id),
    student_id UUID NOT NULL,
    course_id  UUID NOT NULL,
    created_at TIMESTAMPTZ NOT NULL,
    CONSTRAINT coupon_assignments_student_course_key UNIQUE (student_id, course_id)
);

CREATE TABLE IF NOT EXISTS commissions (
    id                TEXT PRIMARY KEY,
    agent_id          UUID NOT NULL,
    coupon_id         UUID,
    course_id         UUID NOT NULL,
    payment_id        TEXT NOT NULL UNIQUE,
    sale_amount       BIGINT NOT NULL,
    discount_amount   BIGINT NOT NULL,
    final_amount      BIGINT NOT NULL,
    commission_amount BIGINT NOT NULL,
    status            TEXT NOT NULL,
    payout_id         TEXT,
    created_at        TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS commissions_agent_status_idx
    ON commissions (agent_id, status);

CREATE TABLE IF NOT EXISTS payout_requests (
    id           TEXT PRIMARY KEY,
    agent_id     UUID NOT NULL,
    amount       BIGINT NOT NULL,
    status       TEXT NOT NULL,
    reason       TEXT NOT NULL DEFAULT '',
    requested_at TIMESTAMPTZ NOT NULL,
    processed_at TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS payout_requests_agent_idx
    ON payout_requests (agent_id);

-- Marketplace tables, consumed read-only by the directory adapters.
CREATE TABLE IF NOT EXISTS agents (
    id               UUID PRIMARY KEY,
    agent_code       TEXT NOT NULL UNIQUE,
    commission_rate  NUMERIC(5,2) NOT NULL,
    telegram_chat_id BIGINT NOT NULL DEFAULT 0,
    is_active        BOOLEAN NOT NULL DEFAULT TRUE,
    created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS courses (
    id                    UUID PRIMARY KEY,
    title                 TEXT NOT NULL,
    price                 BIGINT NOT NULL,
    has_admin_discount    BOOLEAN NOT NULL DEFAULT FALSE,
    admin_discount_amount BIGINT NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS enrollments (
    student_id UUID NOT NULL,
    course_id  UUID NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    PRIMARY KEY (student_id, course_id)
);
`
