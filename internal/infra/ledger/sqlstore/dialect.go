package sqlstore

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

type dialect struct {
	driverName       string
	schema           []string
	ensureCollection string
	upsertSequence   string
	lockWait         func(time.Duration) string
	rebind           func(string) string
}

var dialects = map[string]dialect{
	DriverMySQL: {
		driverName: "mysql",
		schema: []string{
			`CREATE TABLE IF NOT EXISTS ledger_collections (
				name VARCHAR(64) NOT NULL PRIMARY KEY
			)`,
			`CREATE TABLE IF NOT EXISTS ledger_records (
				position BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
				collection VARCHAR(64) NOT NULL,
				id VARCHAR(128) NOT NULL,
				body LONGTEXT NOT NULL,
				UNIQUE KEY ledger_records_collection_id (collection, id)
			)`,
			`CREATE TABLE IF NOT EXISTS ledger_sequences (
				collection VARCHAR(64) NOT NULL,
				period VARCHAR(16) NOT NULL,
				last_value BIGINT NOT NULL,
				PRIMARY KEY (collection, period)
			)`,
		},
		ensureCollection: `INSERT IGNORE INTO ledger_collections (name) VALUES (?)`,
		upsertSequence: `INSERT INTO ledger_sequences (collection, period, last_value) VALUES (?, ?, ?)
			ON DUPLICATE KEY UPDATE last_value = VALUES(last_value)`,
		lockWait: func(d time.Duration) string {
			// innodb only accepts whole seconds, minimum 1.
			secs := int(math.Ceil(d.Seconds()))
			if secs < 1 {
				secs = 1
			}
			return fmt.Sprintf("SET SESSION innodb_lock_wait_timeout = %d", secs)
		},
		rebind: func(q string) string { return q },
	},
	DriverPostgres: {
		driverName: "pgx",
		schema: []string{
			`CREATE TABLE IF NOT EXISTS ledger_collections (
				name VARCHAR(64) NOT NULL PRIMARY KEY
			)`,
			`CREATE TABLE IF NOT EXISTS ledger_records (
				position BIGSERIAL PRIMARY KEY,
				collection VARCHAR(64) NOT NULL,
				id VARCHAR(128) NOT NULL,
				body TEXT NOT NULL,
				CONSTRAINT ledger_records_collection_id UNIQUE (collection, id)
			)`,
			`CREATE TABLE IF NOT EXISTS ledger_sequences (
				collection VARCHAR(64) NOT NULL,
				period VARCHAR(16) NOT NULL,
				last_value BIGINT NOT NULL,
				PRIMARY KEY (collection, period)
			)`,
		},
		ensureCollection: `INSERT INTO ledger_collections (name) VALUES (?) ON CONFLICT DO NOTHING`,
		upsertSequence: `INSERT INTO ledger_sequences (collection, period, last_value) VALUES (?, ?, ?)
			ON CONFLICT (collection, period) DO UPDATE SET last_value = EXCLUDED.last_value`,
		lockWait: func(d time.Duration) string {
			ms := d.Milliseconds()
			if ms < 1 {
				ms = 1
			}
			return fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", ms)
		},
		rebind: dollarPlaceholders,
	},
}

// dollarPlaceholders rewrites ? placeholders as $1, $2, ... for Postgres.
func dollarPlaceholders(q string) string {
	var b strings.Builder
	b.Grow(len(q) + 8)
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
