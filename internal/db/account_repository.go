package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/teralab/backoffice/internal/model"
)

// ErrAccountExists is returned when creating an account whose name is
// already taken.
var ErrAccountExists = errors.New("account already exists")

// AccountRepository manages player accounts, their characters and their
// benefit grants. Account names are stored lowercased.
type AccountRepository struct {
	db *pgxpool.Pool
}

// NewAccountRepository creates an AccountRepository on the given pool.
func NewAccountRepository(db *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{db: db}
}

// ListAccounts returns up to limit accounts ordered by name, skipping
// the first offset.
func (r *AccountRepository) ListAccounts(ctx context.Context, limit, offset int) ([]model.Account, error) {
	rows, err := r.db.Query(ctx,
		`SELECT name, password, coins, banned, created_at
		 FROM accounts ORDER BY name LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("querying accounts: %w", err)
	}
	defer rows.Close()

	var accounts []model.Account
	for rows.Next() {
		var acc model.Account
		if err := rows.Scan(&acc.Name, &acc.PasswordHash, &acc.Coins, &acc.Banned, &acc.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning account row: %w", err)
		}
		accounts = append(accounts, acc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating account rows: %w", err)
	}
	return accounts, nil
}

// GetAccount returns the account by name.
// Returns nil, nil if the account does not exist.
func (r *AccountRepository) GetAccount(ctx context.Context, name string) (*model.Account, error) {
	name = strings.ToLower(name)
	var acc model.Account
	err := r.db.QueryRow(ctx,
		`SELECT name, password, coins, banned, created_at
		 FROM accounts WHERE name = $1`, name,
	).Scan(&acc.Name, &acc.PasswordHash, &acc.Coins, &acc.Banned, &acc.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying account %q: %w", name, err)
	}
	return &acc, nil
}

// CreateAccount inserts a new account with the given password hash.
// Returns ErrAccountExists when the name is taken.
func (r *AccountRepository) CreateAccount(ctx context.Context, name, passwordHash string) error {
	name = strings.ToLower(name)
	tag, err := r.db.Exec(ctx,
		`INSERT INTO accounts (name, password, created_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (name) DO NOTHING`,
		name, passwordHash, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("creating account %q: %w", name, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("creating account %q: %w", name, ErrAccountExists)
	}
	return nil
}

// UpdateAccount sets the mutable back-office fields (coins, ban flag).
// Returns nil, without error, when the account does not exist; callers
// check existence first.
func (r *AccountRepository) UpdateAccount(ctx context.Context, name string, coins int64, banned bool) error {
	_, err := r.db.Exec(ctx,
		`UPDATE accounts SET coins = $1, banned = $2 WHERE name = $3`,
		coins, banned, strings.ToLower(name),
	)
	if err != nil {
		return fmt.Errorf("updating account %q: %w", name, err)
	}
	return nil
}

// DeleteAccount removes the account and, via cascade, its characters
// and benefit grants.
func (r *AccountRepository) DeleteAccount(ctx context.Context, name string) error {
	_, err := r.db.Exec(ctx,
		`DELETE FROM accounts WHERE name = $1`, strings.ToLower(name),
	)
	if err != nil {
		return fmt.Errorf("deleting account %q: %w", name, err)
	}
	return nil
}

// ListCharacters returns the account's characters ordered by id,
// including soft-deleted ones.
func (r *AccountRepository) ListCharacters(ctx context.Context, accountName string) ([]model.Character, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, account_name, name, level, class, deleted
		 FROM characters WHERE account_name = $1 ORDER BY id`,
		strings.ToLower(accountName),
	)
	if err != nil {
		return nil, fmt.Errorf("querying characters for %q: %w", accountName, err)
	}
	defer rows.Close()

	var chars []model.Character
	for rows.Next() {
		var c model.Character
		if err := rows.Scan(&c.ID, &c.AccountName, &c.Name, &c.Level, &c.Class, &c.Deleted); err != nil {
			return nil, fmt.Errorf("scanning character row: %w", err)
		}
		chars = append(chars, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating character rows: %w", err)
	}
	return chars, nil
}

// RestoreCharacter clears the soft-delete flag on a character.
func (r *AccountRepository) RestoreCharacter(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx,
		`UPDATE characters SET deleted = FALSE WHERE id = $1`, id,
	)
	if err != nil {
		return fmt.Errorf("restoring character %d: %w", id, err)
	}
	return nil
}

// ListBenefits returns the account's benefit grants ordered by benefit id.
func (r *AccountRepository) ListBenefits(ctx context.Context, accountName string) ([]model.BenefitGrant, error) {
	rows, err := r.db.Query(ctx,
		`SELECT account_name, benefit_id, expires_at
		 FROM account_benefits WHERE account_name = $1 ORDER BY benefit_id`,
		strings.ToLower(accountName),
	)
	if err != nil {
		return nil, fmt.Errorf("querying benefits for %q: %w", accountName, err)
	}
	defer rows.Close()

	var grants []model.BenefitGrant
	for rows.Next() {
		var g model.BenefitGrant
		if err := rows.Scan(&g.AccountName, &g.BenefitID, &g.ExpiresAt); err != nil {
			return nil, fmt.Errorf("scanning benefit row: %w", err)
		}
		grants = append(grants, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating benefit rows: %w", err)
	}
	return grants, nil
}

// GrantBenefit inserts or refreshes a benefit grant, keyed by
// (account_name, benefit_id). Re-granting updates the expiry.
func (r *AccountRepository) GrantBenefit(ctx context.Context, g model.BenefitGrant) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO account_benefits (account_name, benefit_id, expires_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (account_name, benefit_id)
		 DO UPDATE SET expires_at = EXCLUDED.expires_at`,
		strings.ToLower(g.AccountName), g.BenefitID, g.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("granting benefit %d to %q: %w", g.BenefitID, g.AccountName, err)
	}
	return nil
}

// RevokeBenefit removes a benefit grant from an account.
func (r *AccountRepository) RevokeBenefit(ctx context.Context, accountName string, benefitID int32) error {
	_, err := r.db.Exec(ctx,
		`DELETE FROM account_benefits WHERE account_name = $1 AND benefit_id = $2`,
		strings.ToLower(accountName), benefitID,
	)
	if err != nil {
		return fmt.Errorf("revoking benefit %d from %q: %w", benefitID, accountName, err)
	}
	return nil
}
