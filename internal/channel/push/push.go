// Package push delivers expiry notifications as web push messages to
// every browser a user has registered.
package push

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/google/uuid"
	"github.com/wb-go/wbf/zlog"

	"github.com/Madhu097/foodremainder-sub000/internal/channel"
	"github.com/Madhu097/foodremainder-sub000/internal/model"
)

// Pruner removes a dead subscription endpoint. Satisfied by the store.
type Pruner interface {
	RemovePushSubscription(ctx context.Context, userID uuid.UUID, endpoint string) error
}

// Config holds the VAPID key pair. Subscriber is the contact mailto
// address push services may use to reach the operator.
type Config struct {
	VAPIDPublicKey  string
	VAPIDPrivateKey string
	Subscriber      string
	TTL             int
}

type sendFunc func(ctx context.Context, message []byte, s *webpush.Subscription, options *webpush.Options) (*http.Response, error)

type Adapter struct {
	cfg        Config
	pruner     Pruner
	send       sendFunc
	configured bool
}

func New(cfg Config, pruner Pruner) *Adapter {
	configured := cfg.VAPIDPublicKey != "" && cfg.VAPIDPrivateKey != ""
	if !configured {
		zlog.Logger.Info().Msg("push channel disabled: VAPID keys not set")
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * 60 * 60
	}

	return &Adapter{
		cfg:        cfg,
		pruner:     pruner,
		send:       webpush.SendNotificationWithContext,
		configured: configured,
	}
}

// NewWithSender wires a custom send function. Used in tests.
func NewWithSender(cfg Config, pruner Pruner, send sendFunc) *Adapter {
	a := New(cfg, pruner)
	a.send = send
	a.configured = true
	return a
}

func (a *Adapter) Kind() channel.Kind { return channel.KindPush }

func (a *Adapter) Configured() bool { return a.configured }

// PublicKey exposes the VAPID public key for client-side subscription.
func (a *Adapter) PublicKey() string { return a.cfg.VAPIDPublicKey }

// Send fans out to all registered subscriptions. Endpoints answering
// 404/410 are flagged for pruning; the send counts as successful when at
// least one subscription accepted the message.
func (a *Adapter) Send(ctx context.Context, user model.User, items []model.FoodItem) error {
	if !a.configured {
		return channel.ErrNotConfigured
	}
	if len(user.PushSubscriptions) == 0 {
		return channel.ErrNoRecipient
	}

	msg := channel.BuildMessage(user, items, time.Now())
	payload, err := json.Marshal(map[string]string{
		"title": msg.Subject,
		"body":  msg.Body(),
		"url":   "/dashboard",
	})
	if err != nil {
		return fmt.Errorf("marshal push payload: %w", err)
	}

	opts := &webpush.Options{
		Subscriber:      a.cfg.Subscriber,
		VAPIDPublicKey:  a.cfg.VAPIDPublicKey,
		VAPIDPrivateKey: a.cfg.VAPIDPrivateKey,
		TTL:             a.cfg.TTL,
	}

	delivered := 0
	var lastErr error
	for _, sub := range user.PushSubscriptions {
		s := &webpush.Subscription{
			Endpoint: sub.Endpoint,
			Keys:     webpush.Keys{P256dh: sub.P256dh, Auth: sub.Auth},
		}

		resp, err := a.send(ctx, payload, s, opts)
		if err != nil {
			lastErr = fmt.Errorf("push send: %w", err)
			zlog.Logger.Warn().Err(err).Str("endpoint", sub.Endpoint).Msg("push delivery failed")
			continue
		}

		switch {
		case resp.StatusCode == http.StatusGone || resp.StatusCode == http.StatusNotFound:
			// Subscription is dead; prune it and move on.
			zlog.Logger.Info().Str("endpoint", sub.Endpoint).Int("status", resp.StatusCode).Msg("pruning expired push subscription")
			if a.pruner != nil {
				if err := a.pruner.RemovePushSubscription(ctx, user.ID, sub.Endpoint); err != nil {
					zlog.Logger.Error().Err(err).Str("endpoint", sub.Endpoint).Msg("failed to prune push subscription")
				}
			}
			lastErr = channel.Permanent{Err: fmt.Errorf("subscription gone (%d)", resp.StatusCode)}
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			delivered++
		default:
			lastErr = fmt.Errorf("push service returned %d", resp.StatusCode)
			zlog.Logger.Warn().Int("status", resp.StatusCode).Str("endpoint", sub.Endpoint).Msg("unexpected push response")
		}
		resp.Body.Close()
	}

	if delivered == 0 {
		if lastErr != nil {
			return lastErr
		}
		return fmt.Errorf("no push subscription accepted the message")
	}
	return nil
}
