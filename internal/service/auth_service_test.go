package service

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sefazor/ourphotos-albums/internal/repository"
	"github.com/sefazor/ourphotos-albums/internal/repository/memory"
	"github.com/sefazor/ourphotos-albums/pkg/jwt"
	"github.com/sefazor/ourphotos-albums/pkg/oauth"
	"github.com/sefazor/ourphotos-albums/pkg/oauthstate"
)

type fakeProvider struct {
	identities map[string]*oauth.Identity
}

func (p *fakeProvider) AuthCodeURL(state string) string {
	return "https://accounts.example.com/auth?state=" + url.QueryEscape(state)
}

func (p *fakeProvider) Exchange(_ context.Context, code string) (*oauth.Identity, error) {
	id, ok := p.identities[code]
	if !ok {
		return nil, errors.New("invalid_grant")
	}
	return id, nil
}

func newAuthService(t *testing.T) (*AuthService, *memory.Store, *jwt.Manager) {
	t.Helper()
	store := memory.NewStore()
	tokens := jwt.NewManager("secret", time.Hour)
	provider := &fakeProvider{identities: map[string]*oauth.Identity{
		"ada":  {Subject: "g-1", Email: "ada@example.com", EmailVerified: true},
		"bob":  {Subject: "g-2", Email: "bob@example.com", EmailVerified: true},
		"cleo": {Subject: "g-3", Email: "cleo@example.com", EmailVerified: true},
		"eve":  {Subject: "g-4", Email: "eve@example.com"},
	}}
	svc := NewAuthService(store.Users(), provider, oauthstate.NewMemoryStore(time.Minute), tokens, "https://app.example.com/", zap.NewNop())
	return svc, store, tokens
}

func beginState(t *testing.T, svc *AuthService) string {
	t.Helper()
	redirect, err := svc.BeginLogin(context.Background())
	require.NoError(t, err)
	u, err := url.Parse(redirect)
	require.NoError(t, err)
	return u.Query().Get("state")
}

func TestCompleteLogin_CreatesUserOnce(t *testing.T) {
	svc, store, tokens := newAuthService(t)
	ctx := context.Background()

	first, err := svc.CompleteLogin(ctx, "ada", beginState(t, svc))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(first.RedirectURL, "https://app.example.com/user/auth/photos?token="))

	claims, err := tokens.Verify(first.Token)
	require.NoError(t, err)
	assert.Equal(t, first.User.ID, claims.UserID)
	assert.Equal(t, "ada@example.com", claims.Email)

	second, err := svc.CompleteLogin(ctx, "ada", beginState(t, svc))
	require.NoError(t, err)
	assert.Equal(t, first.User.ID, second.User.ID)

	stored, err := store.Users().GetByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, "g-1", stored.ProviderID)
}

func TestCompleteLogin_Failures(t *testing.T) {
	svc, _, _ := newAuthService(t)
	ctx := context.Background()

	_, err := svc.CompleteLogin(ctx, "", beginState(t, svc))
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.CompleteLogin(ctx, "ada", "forged")
	assert.ErrorIs(t, err, ErrValidation)

	state := beginState(t, svc)
	_, err = svc.CompleteLogin(ctx, "ada", state)
	require.NoError(t, err)
	_, err = svc.CompleteLogin(ctx, "ada", state)
	assert.ErrorIs(t, err, ErrValidation, "state is single use")

	_, err = svc.CompleteLogin(ctx, "unknown", beginState(t, svc))
	assert.ErrorIs(t, err, ErrUpstream)
}

func TestCompleteLogin_UnverifiedEmailRejected(t *testing.T) {
	svc, store, _ := newAuthService(t)
	ctx := context.Background()

	_, err := svc.CompleteLogin(ctx, "eve", beginState(t, svc))
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = store.Users().GetByEmail(ctx, "eve@example.com")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestLoginFailureURL(t *testing.T) {
	svc, _, _ := newAuthService(t)

	got := svc.LoginFailureURL(newError(ErrUpstream, "failed to sign in with Google"))
	assert.Equal(t, "https://app.example.com/user/login?issue=failed+to+sign+in+with+Google", got)
}

func TestListPeers(t *testing.T) {
	svc, _, _ := newAuthService(t)
	ctx := context.Background()
	for _, code := range []string{"ada", "bob", "cleo"} {
		_, err := svc.CompleteLogin(ctx, code, beginState(t, svc))
		require.NoError(t, err)
	}

	peers, err := svc.ListPeers(ctx, "bob@example.com")
	require.NoError(t, err)
	require.Len(t, peers, 2)
	assert.Equal(t, "ada@example.com", peers[0].Email)
	assert.Equal(t, "cleo@example.com", peers[1].Email)
}
