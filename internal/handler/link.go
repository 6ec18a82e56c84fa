package handler

import (
	"log/slog"
	"net/http"

	"github.com/rs/xid"

	"github.com/sakif/authd/internal/auth"
	"github.com/sakif/authd/internal/model"
	"github.com/sakif/authd/internal/service"
)

// LinkHandler manages the GitHub account-linking flow.
//
// Unlike an OAuth *login* flow, both routes here sit behind
// RequireAuth: the user is already signed in with us, and the flow
// records which GitHub identity belongs to them.
//
//	GET /auth/github/login    → set state cookie, redirect to GitHub
//	GET /auth/github/callback → verify state, exchange code, store link
//	GET /auth/accounts        → list the caller's linked accounts
type LinkHandler struct {
	github *auth.GitHubProvider
	links  *service.LinkService
	logger *slog.Logger
}

func NewLinkHandler(github *auth.GitHubProvider, links *service.LinkService, logger *slog.Logger) *LinkHandler {
	return &LinkHandler{
		github: github,
		links:  links,
		logger: logger,
	}
}

// HandleGitHubLogin starts the linking flow.
//
// CSRF STATE:
// A random, single-use state value goes into a short-lived HttpOnly
// cookie and into the authorize URL. The callback accepts the flow
// only when the two match — proving this server initiated it.
func (h *LinkHandler) HandleGitHubLogin(w http.ResponseWriter, r *http.Request) {
	state := xid.New().String()

	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    state,
		Path:     "/",
		MaxAge:   600, // 10 minutes — long enough to approve on GitHub
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.github.AuthURL(state), http.StatusTemporaryRedirect)
}

// HandleGitHubCallback completes the linking flow.
func (h *LinkHandler) HandleGitHubCallback(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, envelope{Message: "unauthorized"})
		return
	}

	// State check first, before touching anything else.
	stateCookie, err := r.Cookie("oauth_state")
	if err != nil || stateCookie.Value == "" || r.URL.Query().Get("state") != stateCookie.Value {
		h.logger.Warn("github callback: state mismatch", slog.String("userID", id.ID))
		writeJSON(w, http.StatusBadRequest, envelope{Message: "invalid OAuth state"})
		return
	}

	// The state is single-use — clear it win or lose.
	http.SetCookie(w, &http.Cookie{
		Name:   "oauth_state",
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		// User declined on GitHub's side.
		h.logger.Info("github callback: authorization denied",
			slog.String("userID", id.ID),
			slog.String("error", errParam),
		)
		http.Redirect(w, r, "/?link=denied", http.StatusSeeOther)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		writeJSON(w, http.StatusBadRequest, envelope{Message: "missing OAuth code"})
		return
	}

	ghUser, err := h.github.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("github callback: exchange failed",
			slog.String("userID", id.ID),
			slog.String("error", err.Error()),
		)
		writeJSON(w, http.StatusInternalServerError, envelope{Message: "account linking failed"})
		return
	}

	if _, err := h.links.LinkGitHub(r.Context(), id.ID, ghUser); err != nil {
		writeError(w, err)
		return
	}

	http.Redirect(w, r, "/?link=ok", http.StatusSeeOther)
}

// HandleAccounts lists the caller's linked third-party accounts.
func (h *LinkHandler) HandleAccounts(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, envelope{Message: "unauthorized"})
		return
	}

	accounts, err := h.links.Accounts(r.Context(), id.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	if accounts == nil {
		accounts = []model.Account{} // encode as [], not null
	}

	writeJSON(w, http.StatusOK, envelope{
		Message: "OK",
		Data:    accounts,
	})
}
