package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/authd/internal/apperror"
	"github.com/sakif/authd/internal/model"
	"github.com/sakif/authd/internal/repository"
)

// compile-time check that *AccountStore implements repository.AccountRepository
var _ repository.AccountRepository = (*AccountStore)(nil)

// AccountStore implements repository.AccountRepository on the shared DB.
type AccountStore struct {
	db *DB
}

// Accounts returns the account repository backed by this database.
func (db *DB) Accounts() *AccountStore {
	return &AccountStore{db: db}
}

// EnsureService returns the provider row, inserting it on first use.
// INSERT OR IGNORE plus a read-back keeps this race-safe without a
// transaction: concurrent callers at worst both attempt the insert and
// one is ignored.
func (s *AccountStore) EnsureService(ctx context.Context, name string) (*model.Service, error) {
	_, err := s.db.conn.ExecContext(ctx,
		`INSERT OR IGNORE INTO services (id, name) VALUES (?, ?)`,
		xid.New().String(), name,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: ensuring service %s: %w", name, err)
	}

	var svc model.Service
	err = s.db.conn.QueryRowContext(ctx,
		`SELECT id, name FROM services WHERE name = ?`, name,
	).Scan(&svc.ID, &svc.Name)
	if err != nil {
		return nil, fmt.Errorf("sqlite: reading service %s: %w", name, err)
	}

	return &svc, nil
}

// CreateAccount links a user to a provider identity. The UNIQUE
// (user_id, service_id) index rejects a second link to the same
// provider, which surfaces as a conflict.
func (s *AccountStore) CreateAccount(ctx context.Context, account *model.Account) error {
	account.ID = xid.New().String()
	account.CreatedAt = time.Now().UTC()

	_, err := s.db.conn.ExecContext(ctx,
		`INSERT INTO accounts (id, user_id, service_id, provider_account_id, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		account.ID,
		account.UserID,
		account.ServiceID,
		account.ProviderAccountID,
		account.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("Account already linked for this service")
		}
		return fmt.Errorf("sqlite: inserting account for user %s: %w", account.UserID, err)
	}

	return nil
}

// ListAccountsByUser returns the user's linked accounts, oldest first.
func (s *AccountStore) ListAccountsByUser(ctx context.Context, userID string) ([]model.Account, error) {
	rows, err := s.db.conn.QueryContext(ctx,
		`SELECT id, user_id, service_id, provider_account_id, created_at
		 FROM accounts WHERE user_id = ? ORDER BY created_at`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing accounts for user %s: %w", userID, err)
	}
	defer rows.Close()

	var accounts []model.Account
	for rows.Next() {
		var a model.Account
		if err := rows.Scan(&a.ID, &a.UserID, &a.ServiceID, &a.ProviderAccountID, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning account row: %w", err)
		}
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating account rows: %w", err)
	}

	return accounts, nil
}
