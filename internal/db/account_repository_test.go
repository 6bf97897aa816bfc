package db_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teralab/backoffice/internal/db"
	"github.com/teralab/backoffice/internal/model"
)

func TestAccountRepository_CRUD(t *testing.T) {
	pool := setupPool(t)
	repo := db.NewAccountRepository(pool)
	ctx := context.Background()

	hash, err := db.HashPassword("hunter22")
	require.NoError(t, err)

	require.NoError(t, repo.CreateAccount(ctx, "Alice", hash))
	err = repo.CreateAccount(ctx, "ALICE", hash)
	assert.ErrorIs(t, err, db.ErrAccountExists)

	acc, err := repo.GetAccount(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, acc)
	assert.Equal(t, "alice", acc.Name)
	assert.Equal(t, hash, acc.PasswordHash)
	assert.False(t, acc.Banned)

	require.NoError(t, repo.UpdateAccount(ctx, "alice", 500, true))
	acc, err = repo.GetAccount(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(500), acc.Coins)
	assert.True(t, acc.Banned)

	require.NoError(t, repo.CreateAccount(ctx, "bob", hash))
	accounts, err := repo.ListAccounts(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, "alice", accounts[0].Name)
	assert.Equal(t, "bob", accounts[1].Name)

	require.NoError(t, repo.DeleteAccount(ctx, "alice"))
	acc, err = repo.GetAccount(ctx, "alice")
	require.NoError(t, err)
	assert.Nil(t, acc)
}

func TestAccountRepository_Characters(t *testing.T) {
	pool := setupPool(t)
	repo := db.NewAccountRepository(pool)
	ctx := context.Background()

	require.NoError(t, repo.CreateAccount(ctx, "alice", "x"))
	_, err := pool.Exec(ctx,
		`INSERT INTO characters (account_name, name, level, class, deleted)
		 VALUES ('alice', 'Kael', 58, 'lancer', TRUE)`)
	require.NoError(t, err)

	chars, err := repo.ListCharacters(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, chars, 1)
	assert.Equal(t, "Kael", chars[0].Name)
	assert.True(t, chars[0].Deleted)

	require.NoError(t, repo.RestoreCharacter(ctx, chars[0].ID))
	chars, err = repo.ListCharacters(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, chars[0].Deleted)
}

func TestAccountRepository_Benefits(t *testing.T) {
	pool := setupPool(t)
	repo := db.NewAccountRepository(pool)
	ctx := context.Background()

	require.NoError(t, repo.CreateAccount(ctx, "alice", "x"))

	expires := time.Now().Add(30 * 24 * time.Hour).UTC().Truncate(time.Second)
	grant := model.BenefitGrant{AccountName: "alice", BenefitID: 333, ExpiresAt: &expires}
	require.NoError(t, repo.GrantBenefit(ctx, grant))

	// Re-granting the same benefit refreshes the expiry instead of
	// inserting a second row.
	later := expires.Add(30 * 24 * time.Hour)
	grant.ExpiresAt = &later
	require.NoError(t, repo.GrantBenefit(ctx, grant))

	grants, err := repo.ListBenefits(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, grants, 1)
	assert.Equal(t, int32(333), grants[0].BenefitID)
	require.NotNil(t, grants[0].ExpiresAt)
	assert.True(t, grants[0].ExpiresAt.Equal(later))

	require.NoError(t, repo.GrantBenefit(ctx, model.BenefitGrant{AccountName: "alice", BenefitID: 533}))
	grants, err = repo.ListBenefits(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, grants, 2)
	assert.Nil(t, grants[1].ExpiresAt)

	require.NoError(t, repo.RevokeBenefit(ctx, "alice", 333))
	grants, err = repo.ListBenefits(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, grants, 1)
	assert.Equal(t, int32(533), grants[0].BenefitID)

	// Deleting the account cascades to its grants.
	require.NoError(t, repo.DeleteAccount(ctx, "alice"))
	grants, err = repo.ListBenefits(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, grants)
}
