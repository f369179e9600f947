// Package testutil fornece bancos em memória para testes.
package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"
	"time"

	"marketplace-gateway/internal/store"
)

// NewTestDB abre um SQLite em memória exclusivo do teste, com o schema aplicado.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
	db, err := store.Open(context.Background(), dsn)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// SeedProfile insere um perfil e falha o teste em caso de erro.
func SeedProfile(t *testing.T, db *sql.DB, id, role, status string, createdAt time.Time) {
	t.Helper()
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := store.NewProfileRepository(db).Create(context.Background(), store.Profile{
		ID:             id,
		Email:          id + "@example.com",
		DisplayName:    id,
		Role:           role,
		ApprovalStatus: status,
		CreatedAt:      createdAt,
	})
	if err != nil {
		t.Fatalf("failed to seed profile: %v", err)
	}
}
