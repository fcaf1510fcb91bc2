package config

import (
	"fmt"
	"os"
	"strings"
)

type StoreKind string

const (
	StoreMemory   StoreKind = "memory"
	StorePostgres StoreKind = "postgres"
)

// SessionStore picks where live sessions are kept. Without SESSION_STORE,
// Postgres is used as soon as any database variable is present.
func SessionStore() (StoreKind, error) {
	kind, ok := os.LookupEnv("SESSION_STORE")
	if !ok || kind == "" {
		if _, ok := os.LookupEnv("DATABASE_URL"); ok {
			return StorePostgres, nil
		}
		if _, ok := os.LookupEnv("POSTGRES_HOST"); ok {
			return StorePostgres, nil
		}
		return StoreMemory, nil
	}
	switch StoreKind(strings.ToLower(kind)) {
	case StoreMemory:
		return StoreMemory, nil
	case StorePostgres:
		return StorePostgres, nil
	}
	return "", fmt.Errorf("unknown SESSION_STORE %q", kind)
}
