package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/sakif/authd/internal/apperror"
	"github.com/sakif/authd/internal/auth"
	"github.com/sakif/authd/internal/model"
)

// fakeAccountRepo is an in-memory AccountRepository.
type fakeAccountRepo struct {
	services map[string]*model.Service
	accounts []model.Account
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{services: make(map[string]*model.Service)}
}

func (f *fakeAccountRepo) EnsureService(ctx context.Context, name string) (*model.Service, error) {
	if svc, ok := f.services[name]; ok {
		return svc, nil
	}
	svc := &model.Service{ID: fmt.Sprintf("svc-%d", len(f.services)+1), Name: name}
	f.services[name] = svc
	return svc, nil
}

func (f *fakeAccountRepo) CreateAccount(ctx context.Context, account *model.Account) error {
	for _, a := range f.accounts {
		if a.UserID == account.UserID && a.ServiceID == account.ServiceID {
			return apperror.Conflict("Account already linked for this service")
		}
	}
	account.ID = fmt.Sprintf("acct-%d", len(f.accounts)+1)
	account.CreatedAt = time.Now()
	f.accounts = append(f.accounts, *account)
	return nil
}

func (f *fakeAccountRepo) ListAccountsByUser(ctx context.Context, userID string) ([]model.Account, error) {
	var out []model.Account
	for _, a := range f.accounts {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func newTestLinkService(repo *fakeAccountRepo) *LinkService {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewLinkService(repo, logger)
}

func TestLinkGitHub(t *testing.T) {
	repo := newFakeAccountRepo()
	svc := newTestLinkService(repo)

	account, err := svc.LinkGitHub(context.Background(), "user-1", &auth.GitHubUser{ID: 12345, Login: "octo"})
	if err != nil {
		t.Fatalf("LinkGitHub() error = %v", err)
	}
	if account.ProviderAccountID != "12345" {
		t.Errorf("ProviderAccountID = %q, want %q", account.ProviderAccountID, "12345")
	}

	// The github service row was created lazily.
	if _, ok := repo.services["github"]; !ok {
		t.Error("LinkGitHub() did not create the github service row")
	}
}

func TestLinkGitHub_SecondLinkConflicts(t *testing.T) {
	repo := newFakeAccountRepo()
	svc := newTestLinkService(repo)

	if _, err := svc.LinkGitHub(context.Background(), "user-1", &auth.GitHubUser{ID: 1}); err != nil {
		t.Fatalf("first LinkGitHub() error = %v", err)
	}

	// Linking again — even to a different GitHub identity — conflicts:
	// one provider link per user.
	_, err := svc.LinkGitHub(context.Background(), "user-1", &auth.GitHubUser{ID: 2})
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("second LinkGitHub() error = %v, want ErrConflict", err)
	}
}

func TestLinkAccounts_ScopedToUser(t *testing.T) {
	repo := newFakeAccountRepo()
	svc := newTestLinkService(repo)

	svc.LinkGitHub(context.Background(), "user-1", &auth.GitHubUser{ID: 1})
	svc.LinkGitHub(context.Background(), "user-2", &auth.GitHubUser{ID: 2})

	accounts, err := svc.Accounts(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("Accounts() error = %v", err)
	}
	if len(accounts) != 1 {
		t.Fatalf("Accounts() returned %d rows, want 1", len(accounts))
	}
	if accounts[0].UserID != "user-1" {
		t.Errorf("Accounts() leaked another user's row")
	}
}
