package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suhejbmusliu/Full-Stack-Blog-Post/internal/models"
	pkgauth "github.com/suhejbmusliu/Full-Stack-Blog-Post/pkg/auth"
)

type mockSeedStore struct {
	existing *models.Admin
	lookedUp string
	created  *models.Admin
}

func (m *mockSeedStore) GetByEmail(ctx context.Context, email string) (*models.Admin, error) {
	m.lookedUp = email
	if m.existing != nil {
		return m.existing, nil
	}
	return nil, models.ErrNotFound
}

func (m *mockSeedStore) Create(ctx context.Context, admin *models.Admin) (*models.Admin, error) {
	m.created = admin
	return admin, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestEnsureSuperAdmin_NormalizesEmail(t *testing.T) {
	os.Setenv("ADMIN_EMAIL", "  Admin@Example.COM ")
	os.Setenv("ADMIN_PASSWORD", "BootstrapPass123!")
	defer os.Unsetenv("ADMIN_EMAIL")
	defer os.Unsetenv("ADMIN_PASSWORD")

	store := &mockSeedStore{}
	require.NoError(t, ensureSuperAdmin(context.Background(), store, discardLogger()))

	// Login looks admins up by lowercase email, so the seeded row must be
	// stored lowercase too.
	assert.Equal(t, "admin@example.com", store.lookedUp)
	require.NotNil(t, store.created)
	assert.Equal(t, "admin@example.com", store.created.Email)
	assert.Equal(t, "SUPERADMIN", store.created.Role)
	assert.True(t, store.created.IsActive)
	assert.NoError(t, pkgauth.ComparePassword(store.created.PasswordHash, "BootstrapPass123!"))
}

func TestEnsureSuperAdmin_SkipsWhenUnset(t *testing.T) {
	os.Unsetenv("ADMIN_EMAIL")
	os.Unsetenv("ADMIN_PASSWORD")

	store := &mockSeedStore{}
	require.NoError(t, ensureSuperAdmin(context.Background(), store, discardLogger()))
	assert.Nil(t, store.created)
}

func TestEnsureSuperAdmin_ExistingAccountUntouched(t *testing.T) {
	os.Setenv("ADMIN_EMAIL", "admin@example.com")
	os.Setenv("ADMIN_PASSWORD", "BootstrapPass123!")
	defer os.Unsetenv("ADMIN_EMAIL")
	defer os.Unsetenv("ADMIN_PASSWORD")

	store := &mockSeedStore{existing: &models.Admin{ID: "a1", Email: "admin@example.com"}}
	require.NoError(t, ensureSuperAdmin(context.Background(), store, discardLogger()))
	assert.Nil(t, store.created)
}
