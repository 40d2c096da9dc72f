package postgres

const schemaSQL = `
CREATE TABLE IF NOT EXISTS products (
	id               BIGSERIAL PRIMARY KEY,
	name             TEXT NOT NULL CHECK (name <> ''),
	category         TEXT NOT NULL DEFAULT '',
	url              TEXT NOT NULL DEFAULT '',
	other_names      TEXT NOT NULL DEFAULT '',
	website_colors   TEXT[] NOT NULL DEFAULT '{}',
	local_supplier   TEXT NOT NULL DEFAULT '',
	local_moq        INTEGER,
	local_lead_time  TEXT NOT NULL DEFAULT '',
	local_colors     TEXT[] NOT NULL DEFAULT '{}',
	china_available  BOOLEAN NOT NULL DEFAULT FALSE,
	china_moq        INTEGER,
	china_air        BOOLEAN NOT NULL DEFAULT FALSE,
	china_sea        BOOLEAN NOT NULL DEFAULT FALSE,
	china_colors     TEXT NOT NULL DEFAULT '',
	notes            TEXT NOT NULL DEFAULT '',
	last_updated     TIMESTAMPTZ
);

CREATE UNIQUE INDEX IF NOT EXISTS products_name_lower_idx ON products (lower(name));

CREATE TABLE IF NOT EXISTS synonyms (
	id             BIGSERIAL PRIMARY KEY,
	customer_says  TEXT NOT NULL,
	we_call_it     TEXT NOT NULL,
	notes          TEXT NOT NULL DEFAULT ''
);
`
