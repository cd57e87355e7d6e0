package service

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sefazor/ourphotos-albums/internal/metrics"
	"github.com/sefazor/ourphotos-albums/internal/models"
	"github.com/sefazor/ourphotos-albums/internal/repository"
	"github.com/sefazor/ourphotos-albums/pkg/jwt"
	"github.com/sefazor/ourphotos-albums/pkg/oauth"
	"github.com/sefazor/ourphotos-albums/pkg/oauthstate"
)

type IdentityProvider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth.Identity, error)
}

type AuthService struct {
	users       repository.UserRepository
	provider    IdentityProvider
	states      oauthstate.Store
	tokens      *jwt.Manager
	frontendURL string
	log         *zap.Logger
}

func NewAuthService(
	users repository.UserRepository,
	provider IdentityProvider,
	states oauthstate.Store,
	tokens *jwt.Manager,
	frontendURL string,
	log *zap.Logger,
) *AuthService {
	return &AuthService{
		users:       users,
		provider:    provider,
		states:      states,
		tokens:      tokens,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		log:         log.With(zap.String("component", "auth-service")),
	}
}

// BeginLogin returns the provider URL the browser should be sent to.
func (s *AuthService) BeginLogin(ctx context.Context) (string, error) {
	state, err := s.states.Issue(ctx)
	if err != nil {
		return "", wrapError(ErrPersistence, err, "failed to start login")
	}
	return s.provider.AuthCodeURL(state), nil
}

// CompleteLogin is the only place users are created.
func (s *AuthService) CompleteLogin(ctx context.Context, code, state string) (*models.LoginResult, error) {
	result, err := s.completeLogin(ctx, code, state)
	if err != nil {
		metrics.Logins.WithLabelValues("error").Inc()
		s.log.Warn("login failed", zap.Error(err))
		return nil, err
	}
	metrics.Logins.WithLabelValues("ok").Inc()
	return result, nil
}

func (s *AuthService) completeLogin(ctx context.Context, code, state string) (*models.LoginResult, error) {
	if code == "" {
		return nil, newError(ErrValidation, "missing authorization code")
	}

	ok, err := s.states.Consume(ctx, state)
	if err != nil {
		return nil, wrapError(ErrPersistence, err, "failed to verify login state")
	}
	if !ok {
		return nil, newError(ErrValidation, "invalid or expired login state")
	}

	identity, err := s.provider.Exchange(ctx, code)
	if err != nil {
		return nil, wrapError(ErrUpstream, err, "failed to sign in with Google")
	}
	// users are matched by email, so it must belong to the caller
	if !identity.EmailVerified {
		return nil, newError(ErrForbidden, "Google account email is not verified")
	}

	user, err := s.findOrCreate(ctx, identity)
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.Generate(user.Email, user.ID)
	if err != nil {
		return nil, wrapError(ErrPersistence, err, "failed to issue credential")
	}

	s.log.Info("user signed in", zap.String("userId", user.ID))
	return &models.LoginResult{
		User:        *user,
		Token:       token,
		RedirectURL: s.frontendURL + "/user/auth/photos?token=" + url.QueryEscape(token),
	}, nil
}

func (s *AuthService) findOrCreate(ctx context.Context, identity *oauth.Identity) (*models.User, error) {
	user, err := s.users.GetByEmail(ctx, identity.Email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, storeError(err, "user")
	}

	user = &models.User{
		ID:         uuid.NewString(),
		ProviderID: identity.Subject,
		Email:      identity.Email,
	}
	err = s.users.Create(ctx, user)
	if errors.Is(err, repository.ErrAlreadyExists) {
		// concurrent first login
		if user, err = s.users.GetByEmail(ctx, identity.Email); err != nil {
			return nil, storeError(err, "user")
		}
		return user, nil
	}
	if err != nil {
		return nil, storeError(err, "user")
	}

	s.log.Info("user created", zap.String("userId", user.ID))
	return user, nil
}

// LoginFailureURL is where the browser lands when CompleteLogin fails.
func (s *AuthService) LoginFailureURL(err error) string {
	issue := "LOGIN_FAILED"
	if err != nil {
		issue = err.Error()
	}
	return s.frontendURL + "/user/login?issue=" + url.QueryEscape(issue)
}

func (s *AuthService) ListPeers(ctx context.Context, callerEmail string) ([]models.PeerResponse, error) {
	users, err := s.users.ListExcept(ctx, callerEmail)
	if err != nil {
		return nil, wrapError(ErrPersistence, err, "failed to fetch users")
	}

	peers := make([]models.PeerResponse, 0, len(users))
	for _, u := range users {
		peers = append(peers, models.PeerResponse{ID: u.ID, Email: u.Email})
	}
	return peers, nil
}
