// Package ownership drives the channel-ownership proof flows: exchanging an
// authorization code for a signed identity claim, and applying a verified
// claim to the permission store.
package ownership

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/reactroom/reactroom/internal/permissions"
	"github.com/reactroom/reactroom/internal/youtube"
)

// CodeExchanger proves channel ownership against the identity provider.
type CodeExchanger interface {
	ExchangeCode(ctx context.Context, code string) (string, error)
	FetchChannelIdentity(ctx context.Context, accessToken string) (youtube.ChannelIdentity, error)
}

// ClaimCodec packages a proven identity into a signed claim and back.
type ClaimCodec interface {
	Issue(identity youtube.ChannelIdentity) (string, time.Time, error)
	Verify(token string) (youtube.ChannelIdentity, error)
}

// RecordStore persists permission records keyed by channel id.
type RecordStore interface {
	Upsert(ctx context.Context, identity youtube.ChannelIdentity, params permissions.UpsertParams) error
	List(ctx context.Context) ([]permissions.Record, error)
	Get(ctx context.Context, key string) (permissions.Record, error)
}

// SetPermissionsRequest is the caller-supplied payload for a permission write.
// The token is the signed claim from a prior Authorize call.
type SetPermissionsRequest struct {
	CanReactLive             permissions.Level `json:"can_react_live"`
	LiveReactionDelayValue   int               `json:"live_reaction_delay_value"`
	LiveReactionDelayUnit    string            `json:"live_reaction_delay_unit"`
	CanUploadReaction        permissions.Level `json:"can_upload_reaction"`
	UploadReactionDelayValue int               `json:"upload_reaction_delay_value"`
	UploadReactionDelayUnit  string            `json:"upload_reaction_delay_unit"`
	Token                    string            `json:"token"`
}

// Service composes the provider client, claim codec, and record store.
type Service struct {
	provider CodeExchanger
	codec    ClaimCodec
	store    RecordStore
	logger   *slog.Logger
}

// NewService creates the ownership orchestrator.
func NewService(log *slog.Logger, provider CodeExchanger, codec ClaimCodec, store RecordStore) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		provider: provider,
		codec:    codec,
		store:    store,
		logger:   log.With(slog.String("service", "ownership")),
	}
}

// Authorize proves ownership from an authorization code and returns a signed
// claim. Nothing is persisted; any step failing short-circuits the flow.
func (s *Service) Authorize(ctx context.Context, code string) (string, error) {
	accessToken, err := s.provider.ExchangeCode(ctx, code)
	if err != nil {
		return "", err
	}
	identity, err := s.provider.FetchChannelIdentity(ctx, accessToken)
	if err != nil {
		return "", err
	}
	token, expiresAt, err := s.codec.Issue(identity)
	if err != nil {
		return "", fmt.Errorf("issue claim: %w", err)
	}
	s.logger.Info("claim issued",
		slog.String("channel_id", identity.ChannelID),
		slog.Time("expires_at", expiresAt),
	)
	return token, nil
}

// SetPermissions verifies the claim and upserts the permission record.
// Verification failure aborts before any store write.
func (s *Service) SetPermissions(ctx context.Context, req SetPermissionsRequest) error {
	identity, err := s.codec.Verify(req.Token)
	if err != nil {
		return err
	}
	err = s.store.Upsert(ctx, identity, permissions.UpsertParams{
		CanReactLive:        req.CanReactLive,
		LiveReactionDelay:   permissions.BuildDelay(req.LiveReactionDelayValue, req.LiveReactionDelayUnit),
		CanUploadReaction:   req.CanUploadReaction,
		UploadReactionDelay: permissions.BuildDelay(req.UploadReactionDelayValue, req.UploadReactionDelayUnit),
	})
	if err != nil {
		return err
	}
	s.logger.Info("permissions updated", slog.String("channel_id", identity.ChannelID))
	return nil
}

// List returns every stored record. Reads need no claim; stored settings are
// public once set.
func (s *Service) List(ctx context.Context) ([]permissions.Record, error) {
	return s.store.List(ctx)
}

// Get returns the record for a channel id or an "@handle" key.
func (s *Service) Get(ctx context.Context, key string) (permissions.Record, error) {
	return s.store.Get(ctx, key)
}
