package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/sakif/authd/internal/auth"
	"github.com/sakif/authd/internal/model"
	"github.com/sakif/authd/internal/repository"
)

// githubServiceName is the provider row accounts link against.
const githubServiceName = "github"

// LinkService attaches third-party identities to existing users.
// This is the runtime behaviour behind the Service/Account tables: a
// signed-in user completes an OAuth flow and we record the link.
type LinkService struct {
	accounts repository.AccountRepository
	logger   *slog.Logger
}

func NewLinkService(accounts repository.AccountRepository, logger *slog.Logger) *LinkService {
	return &LinkService{
		accounts: accounts,
		logger:   logger,
	}
}

// LinkGitHub records a link between userID and the GitHub identity.
// Returns the account row; a second link to GitHub for the same user
// surfaces as a conflict from the repository.
func (s *LinkService) LinkGitHub(ctx context.Context, userID string, ghUser *auth.GitHubUser) (*model.Account, error) {
	if ghUser == nil {
		return nil, fmt.Errorf("service/link: GitHub user must not be nil")
	}

	svc, err := s.accounts.EnsureService(ctx, githubServiceName)
	if err != nil {
		return nil, fmt.Errorf("service/link: ensuring github service row: %w", err)
	}

	account := &model.Account{
		UserID:            userID,
		ServiceID:         svc.ID,
		ProviderAccountID: strconv.FormatInt(ghUser.ID, 10),
	}
	if err := s.accounts.CreateAccount(ctx, account); err != nil {
		return nil, err // conflict passes through untouched
	}

	s.logger.Info("github account linked",
		slog.String("userID", userID),
		slog.Int64("githubID", ghUser.ID),
	)

	return account, nil
}

// Accounts lists the user's linked third-party accounts.
func (s *LinkService) Accounts(ctx context.Context, userID string) ([]model.Account, error) {
	accounts, err := s.accounts.ListAccountsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service/link: listing accounts for %s: %w", userID, err)
	}
	return accounts, nil
}
