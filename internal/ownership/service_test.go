package ownership

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/reactroom/reactroom/internal/auth"
	"github.com/reactroom/reactroom/internal/permissions"
	"github.com/reactroom/reactroom/internal/youtube"
)

// MockExchanger mocks the identity provider for tests.
type MockExchanger struct {
	ExchangeCodeFunc         func(ctx context.Context, code string) (string, error)
	FetchChannelIdentityFunc func(ctx context.Context, token string) (youtube.ChannelIdentity, error)
}

func (m *MockExchanger) ExchangeCode(ctx context.Context, code string) (string, error) {
	return m.ExchangeCodeFunc(ctx, code)
}

func (m *MockExchanger) FetchChannelIdentity(ctx context.Context, token string) (youtube.ChannelIdentity, error) {
	return m.FetchChannelIdentityFunc(ctx, token)
}

// MockStore mocks the record store for tests.
type MockStore struct {
	UpsertFunc func(ctx context.Context, identity youtube.ChannelIdentity, params permissions.UpsertParams) error
	ListFunc   func(ctx context.Context) ([]permissions.Record, error)
	GetFunc    func(ctx context.Context, key string) (permissions.Record, error)
}

func (m *MockStore) Upsert(ctx context.Context, identity youtube.ChannelIdentity, params permissions.UpsertParams) error {
	return m.UpsertFunc(ctx, identity, params)
}

func (m *MockStore) List(ctx context.Context) ([]permissions.Record, error) {
	return m.ListFunc(ctx)
}

func (m *MockStore) Get(ctx context.Context, key string) (permissions.Record, error) {
	return m.GetFunc(ctx, key)
}

func newCodec(t *testing.T) *auth.Codec {
	t.Helper()
	key, err := auth.NewSigningKey()
	if err != nil {
		t.Fatalf("NewSigningKey: %v", err)
	}
	return auth.NewCodec(key)
}

func TestAuthorizeIssuesClaim(t *testing.T) {
	identity := youtube.ChannelIdentity{ChannelID: "UC1", ChannelTitle: "Test", CustomURL: "@test"}
	provider := &MockExchanger{
		ExchangeCodeFunc: func(_ context.Context, code string) (string, error) {
			if code != "abc123" {
				t.Errorf("code = %q", code)
			}
			return "access-token", nil
		},
		FetchChannelIdentityFunc: func(_ context.Context, token string) (youtube.ChannelIdentity, error) {
			if token != "access-token" {
				t.Errorf("access token = %q", token)
			}
			return identity, nil
		},
	}
	codec := newCodec(t)
	svc := NewService(slog.Default(), provider, codec, &MockStore{})

	token, err := svc.Authorize(context.Background(), "abc123")
	if err != nil {
		t.Fatalf("Authorize: %v", err)
	}
	got, err := codec.Verify(token)
	if err != nil {
		t.Fatalf("Verify issued claim: %v", err)
	}
	if got != identity {
		t.Errorf("claim identity = %+v, want %+v", got, identity)
	}
}

func TestAuthorizeExchangeFailureShortCircuits(t *testing.T) {
	fetchCalled := false
	provider := &MockExchanger{
		ExchangeCodeFunc: func(context.Context, string) (string, error) {
			return "", youtube.ErrBadAuthCode
		},
		FetchChannelIdentityFunc: func(context.Context, string) (youtube.ChannelIdentity, error) {
			fetchCalled = true
			return youtube.ChannelIdentity{}, nil
		},
	}
	svc := NewService(slog.Default(), provider, newCodec(t), &MockStore{})

	_, err := svc.Authorize(context.Background(), "expired")
	if !errors.Is(err, youtube.ErrBadAuthCode) {
		t.Fatalf("expected ErrBadAuthCode, got %v", err)
	}
	if fetchCalled {
		t.Error("channel fetch must not run after a failed exchange")
	}
}

func TestSetPermissions(t *testing.T) {
	codec := newCodec(t)
	identity := youtube.ChannelIdentity{ChannelID: "UC1", ChannelTitle: "Test", CustomURL: "@test"}
	token, _, err := codec.Issue(identity)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	var gotIdentity youtube.ChannelIdentity
	var gotParams permissions.UpsertParams
	store := &MockStore{
		UpsertFunc: func(_ context.Context, identity youtube.ChannelIdentity, params permissions.UpsertParams) error {
			gotIdentity = identity
			gotParams = params
			return nil
		},
	}
	svc := NewService(slog.Default(), &MockExchanger{}, codec, store)

	err = svc.SetPermissions(context.Background(), SetPermissionsRequest{
		CanReactLive:             permissions.LevelYesWithDelay,
		LiveReactionDelayValue:   3,
		LiveReactionDelayUnit:    "d",
		CanUploadReaction:        permissions.LevelNo,
		UploadReactionDelayValue: 0,
		UploadReactionDelayUnit:  "",
		Token:                    token,
	})
	if err != nil {
		t.Fatalf("SetPermissions: %v", err)
	}
	if gotIdentity != identity {
		t.Errorf("upsert identity = %+v, want %+v", gotIdentity, identity)
	}
	if gotParams.LiveReactionDelay != "3d" {
		t.Errorf("live delay = %q, want %q", gotParams.LiveReactionDelay, "3d")
	}
	if gotParams.UploadReactionDelay != "0" {
		t.Errorf("upload delay = %q, want %q", gotParams.UploadReactionDelay, "0")
	}
	if gotParams.CanReactLive != permissions.LevelYesWithDelay || gotParams.CanUploadReaction != permissions.LevelNo {
		t.Errorf("levels = %v/%v", gotParams.CanReactLive, gotParams.CanUploadReaction)
	}
}

func TestSetPermissionsBadClaimAbortsBeforeWrite(t *testing.T) {
	upsertCalled := false
	store := &MockStore{
		UpsertFunc: func(context.Context, youtube.ChannelIdentity, permissions.UpsertParams) error {
			upsertCalled = true
			return nil
		},
	}
	svc := NewService(slog.Default(), &MockExchanger{}, newCodec(t), store)

	err := svc.SetPermissions(context.Background(), SetPermissionsRequest{Token: "not-a-claim"})
	if !errors.Is(err, auth.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
	if upsertCalled {
		t.Error("store must not be written when claim verification fails")
	}
}

func TestSetPermissionsExpiredClaim(t *testing.T) {
	key, err := auth.NewSigningKey()
	if err != nil {
		t.Fatal(err)
	}
	// A claim signed by a previous process lifetime (different key).
	stale, _, err := auth.NewCodec(key).Issue(youtube.ChannelIdentity{ChannelID: "UC1"})
	if err != nil {
		t.Fatal(err)
	}

	svc := NewService(slog.Default(), &MockExchanger{}, newCodec(t), &MockStore{})
	if err := svc.SetPermissions(context.Background(), SetPermissionsRequest{Token: stale}); !errors.Is(err, auth.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for stale claim, got %v", err)
	}
}
