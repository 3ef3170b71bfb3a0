package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/nishant/devshelf/internal/model"
	"github.com/nishant/devshelf/internal/repository"
)

// mockOAuthProvider はOAuthProviderのモック実装。
type mockOAuthProvider struct {
	getLoginURLFunc  func(state string) string
	exchangeCodeFunc func(ctx context.Context, code string) (string, error)
}

func (m *mockOAuthProvider) GetLoginURL(state string) string {
	return m.getLoginURLFunc(state)
}

func (m *mockOAuthProvider) ExchangeCode(ctx context.Context, code string) (string, error) {
	return m.exchangeCodeFunc(ctx, code)
}

// mockProfileFetcher はProfileFetcherのモック実装。
type mockProfileFetcher struct {
	getAuthenticatedUserFunc func(ctx context.Context, accessToken string) (*model.UserProfile, error)
}

func (m *mockProfileFetcher) GetAuthenticatedUser(ctx context.Context, accessToken string) (*model.UserProfile, error) {
	return m.getAuthenticatedUserFunc(ctx, accessToken)
}

func TestHandleCallback_CreatesSession(t *testing.T) {
	oauth := &mockOAuthProvider{
		exchangeCodeFunc: func(ctx context.Context, code string) (string, error) {
			if code != "test-code" {
				t.Errorf("code = %q, want %q", code, "test-code")
			}
			return "gho_token", nil
		},
	}
	profiles := &mockProfileFetcher{
		getAuthenticatedUserFunc: func(ctx context.Context, accessToken string) (*model.UserProfile, error) {
			if accessToken != "gho_token" {
				t.Errorf("accessToken = %q, want %q", accessToken, "gho_token")
			}
			return &model.UserProfile{Login: "alice"}, nil
		},
	}
	sessionRepo := repository.NewMemorySessionRepo()
	service := NewService(oauth, profiles, sessionRepo, ServiceConfig{SessionMaxAge: 3600})

	session, err := service.HandleCallback(context.Background(), "test-code")
	if err != nil {
		t.Fatalf("HandleCallback() error = %v", err)
	}

	if session.UserLogin != "alice" {
		t.Errorf("UserLogin = %q, want %q", session.UserLogin, "alice")
	}
	if session.AccessToken != "gho_token" {
		t.Errorf("AccessToken = %q, want %q", session.AccessToken, "gho_token")
	}
	if len(session.ID) != 64 {
		t.Errorf("len(session.ID) = %d, want 64 (32 bytes hex)", len(session.ID))
	}

	// セッションがリポジトリに永続化されていること
	stored, err := sessionRepo.FindByID(context.Background(), session.ID)
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	if stored == nil {
		t.Fatal("session was not persisted")
	}
	if stored.UserLogin != "alice" {
		t.Errorf("stored.UserLogin = %q, want %q", stored.UserLogin, "alice")
	}
}

func TestHandleCallback_ExchangeError(t *testing.T) {
	oauth := &mockOAuthProvider{
		exchangeCodeFunc: func(ctx context.Context, code string) (string, error) {
			return "", errors.New("bad code")
		},
	}
	profiles := &mockProfileFetcher{
		getAuthenticatedUserFunc: func(ctx context.Context, accessToken string) (*model.UserProfile, error) {
			t.Fatal("GetAuthenticatedUser should not be called")
			return nil, nil
		},
	}
	service := NewService(oauth, profiles, repository.NewMemorySessionRepo(), ServiceConfig{SessionMaxAge: 3600})

	if _, err := service.HandleCallback(context.Background(), "bad-code"); err == nil {
		t.Error("HandleCallback() error = nil, want error")
	}
}

func TestHandleCallback_ProfileFetchError(t *testing.T) {
	oauth := &mockOAuthProvider{
		exchangeCodeFunc: func(ctx context.Context, code string) (string, error) {
			return "gho_token", nil
		},
	}
	profiles := &mockProfileFetcher{
		getAuthenticatedUserFunc: func(ctx context.Context, accessToken string) (*model.UserProfile, error) {
			return nil, model.NewGitHubRateLimitedError()
		},
	}
	service := NewService(oauth, profiles, repository.NewMemorySessionRepo(), ServiceConfig{SessionMaxAge: 3600})

	if _, err := service.HandleCallback(context.Background(), "test-code"); err == nil {
		t.Error("HandleCallback() error = nil, want error")
	}
}

func TestLogout_DeletesSession(t *testing.T) {
	sessionRepo := repository.NewMemorySessionRepo()
	oauth := &mockOAuthProvider{
		exchangeCodeFunc: func(ctx context.Context, code string) (string, error) {
			return "gho_token", nil
		},
	}
	profiles := &mockProfileFetcher{
		getAuthenticatedUserFunc: func(ctx context.Context, accessToken string) (*model.UserProfile, error) {
			return &model.UserProfile{Login: "alice"}, nil
		},
	}
	service := NewService(oauth, profiles, sessionRepo, ServiceConfig{SessionMaxAge: 3600})

	session, err := service.HandleCallback(context.Background(), "test-code")
	if err != nil {
		t.Fatalf("HandleCallback() error = %v", err)
	}

	if err := service.Logout(context.Background(), session.ID); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}

	stored, err := sessionRepo.FindByID(context.Background(), session.ID)
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	if stored != nil {
		t.Error("session still exists after logout")
	}
}

func TestLogout_EmptySessionID(t *testing.T) {
	service := NewService(nil, nil, repository.NewMemorySessionRepo(), ServiceConfig{})

	if err := service.Logout(context.Background(), ""); err == nil {
		t.Error("Logout(\"\") error = nil, want error")
	}
}

func TestGetCurrentSession_NotFound(t *testing.T) {
	service := NewService(nil, nil, repository.NewMemorySessionRepo(), ServiceConfig{})

	if _, err := service.GetCurrentSession(context.Background(), "missing"); err == nil {
		t.Error("GetCurrentSession() error = nil, want error")
	}
}

func TestGenerateState_Unique(t *testing.T) {
	first, err := GenerateState()
	if err != nil {
		t.Fatalf("GenerateState() error = %v", err)
	}
	second, err := GenerateState()
	if err != nil {
		t.Fatalf("GenerateState() error = %v", err)
	}

	if first == second {
		t.Error("GenerateState() returned the same value twice")
	}
	if len(first) != 64 {
		t.Errorf("len(state) = %d, want 64", len(first))
	}
}
