package database

import (
	"fmt"
	"hash/fnv"

	"gorm.io/gorm"
)

// AdvisoryKey maps a namespaced key onto the bigint space of
// pg_advisory_xact_lock.
func AdvisoryKey(namespace, key string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(namespace + ":"))
	_, _ = h.Write([]byte(key))
	return int64(h.Sum64())
}

// LockXact takes a PostgreSQL transaction-scoped advisory lock, released at
// commit or rollback. Other dialects need none: sqlite already admits a
// single writer.
func LockXact(tx *gorm.DB, namespace, key string) error {
	if !IsPostgres(tx) {
		return nil
	}
	if err := tx.Exec("SELECT pg_advisory_xact_lock(?)", AdvisoryKey(namespace, key)).Error; err != nil {
		return fmt.Errorf("advisory lock %s:%s: %w", namespace, key, err)
	}
	return nil
}
