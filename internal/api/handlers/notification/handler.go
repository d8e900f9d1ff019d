package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/wb-go/wbf/ginext"
	"github.com/wb-go/wbf/zlog"

	"github.com/Madhu097/foodremainder-sub000/internal/api/respond"
	"github.com/Madhu097/foodremainder-sub000/internal/dispatcher"
	"github.com/Madhu097/foodremainder-sub000/internal/model"
	"github.com/Madhu097/foodremainder-sub000/internal/store"
)

// notificationDispatcher defines the interface that the Handler depends on.
//
// It abstracts the sweep and test-send entry points of the dispatcher.
type notificationDispatcher interface {
	CheckAndNotifyAll(ctx context.Context) (dispatcher.Summary, error)
	TestNotification(ctx context.Context, userID uuid.UUID) (dispatcher.TestOutcome, error)
}

// Handler handles HTTP requests related to expiry notifications.
//
// It provides endpoints for triggering sweeps, sending test notifications,
// updating per-user preferences and managing web push subscriptions.
type Handler struct {
	dispatcher notificationDispatcher
	store      store.Store
	validator  *validator.Validate
	vapidKey   string
}

// NewHandler creates a new Handler instance.
//
// Parameters:
//   - d: implementation of notificationDispatcher
//   - st: user and food item store
//   - v: validator instance for request validation
//   - vapidKey: public VAPID key served to browser clients
func NewHandler(
	d notificationDispatcher,
	st store.Store,
	v *validator.Validate,
	vapidKey string,
) *Handler {
	return &Handler{dispatcher: d, store: st, validator: v, vapidKey: vapidKey}
}

// checkAllResponse is the body returned to the external cron caller.
type checkAllResponse struct {
	Success    bool                       `json:"success"`
	Checked    int                        `json:"checked"`
	Notified   int                        `json:"notified"`
	Skipped    int                        `json:"skipped"`
	Failed     int                        `json:"failed"`
	Results    []model.NotificationResult `json:"results"`
	DurationMS int64                      `json:"duration_ms"`
	Timestamp  time.Time                  `json:"timestamp"`
}

// CheckAll handles GET and POST requests that trigger a full sweep.
//
// Business outcomes always come back as HTTP 200 so the cron provider
// does not retry; a sweep already in flight is one of those outcomes.
func (h *Handler) CheckAll(c *ginext.Context) {
	summary, err := h.dispatcher.CheckAndNotifyAll(c.Request.Context())
	if err != nil {
		if errors.Is(err, dispatcher.ErrSweepRunning) {
			zlog.Logger.Warn().Msg("sweep requested while another is running")
			respond.JSON(c.Writer, http.StatusOK, map[string]interface{}{
				"success": false,
				"error":   "a notification sweep is already running",
			})
			return
		}

		zlog.Logger.Error().Err(err).Msg("failed to run notification sweep")
		respond.Fail(c.Writer, http.StatusInternalServerError, fmt.Errorf("internal server error"))
		return
	}

	results := summary.Results
	if results == nil {
		results = []model.NotificationResult{}
	}

	respond.JSON(c.Writer, http.StatusOK, checkAllResponse{
		Success:    true,
		Checked:    summary.Checked,
		Notified:   summary.Notified,
		Skipped:    summary.Skipped,
		Failed:     summary.Failed,
		Results:    results,
		DurationMS: summary.Duration.Milliseconds(),
		Timestamp:  time.Now(),
	})
}

// Test handles HTTP POST requests to force-send a notification to one user.
//
// When the user has nothing expiring, a synthetic test item is sent instead.
func (h *Handler) Test(c *ginext.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	outcome, err := h.dispatcher.TestNotification(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			zlog.Logger.Warn().Str("user_id", userID.String()).Msg("user not found")
			respond.Fail(c.Writer, http.StatusNotFound, fmt.Errorf("user not found"))
			return
		}

		zlog.Logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to send test notification")
		respond.Fail(c.Writer, http.StatusInternalServerError, fmt.Errorf("internal server error"))
		return
	}

	respond.JSON(c.Writer, http.StatusOK, outcome)
}

// UpdatePreferences handles HTTP PUT requests to partially update a
// user's notification preferences. Absent fields keep their stored values.
func (h *Handler) UpdatePreferences(c *ginext.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	var prefs store.Preferences

	// Decode JSON request body into the partial preferences struct.
	if err := json.NewDecoder(c.Request.Body).Decode(&prefs); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to decode request body")
		respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("invalid request body"))
		return
	}

	// Validate request fields using go-playground/validator.
	if err := h.validator.Struct(prefs); err != nil {
		zlog.Logger.Warn().Err(err).Msg("failed to validate preferences")
		respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("validation error: %s", err.Error()))
		return
	}

	if err := h.store.UpdateNotificationPreferences(c.Request.Context(), userID, prefs); err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			zlog.Logger.Warn().Str("user_id", userID.String()).Msg("user not found")
			respond.Fail(c.Writer, http.StatusNotFound, fmt.Errorf("user not found"))
			return
		}

		zlog.Logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to update preferences")
		respond.Fail(c.Writer, http.StatusInternalServerError, fmt.Errorf("internal server error"))
		return
	}

	respond.OK(c.Writer, "preferences updated")
}

// SubscribeRequest represents the JSON body produced by the browser's
// PushSubscription.toJSON().
type SubscribeRequest struct {
	Endpoint string `json:"endpoint" validate:"required,url"`
	Keys     struct {
		P256dh string `json:"p256dh" validate:"required"`
		Auth   string `json:"auth" validate:"required"`
	} `json:"keys"`
}

// Subscribe handles HTTP POST requests registering a browser for web push.
func (h *Handler) Subscribe(c *ginext.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	var req SubscribeRequest
	if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to decode request body")
		respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("invalid request body"))
		return
	}

	if err := h.validator.Struct(req); err != nil {
		zlog.Logger.Warn().Err(err).Msg("failed to validate subscription")
		respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("validation error: %s", err.Error()))
		return
	}

	sub := model.PushSubscription{
		Endpoint: req.Endpoint,
		P256dh:   req.Keys.P256dh,
		Auth:     req.Keys.Auth,
	}

	if err := h.store.AddPushSubscription(c.Request.Context(), userID, sub); err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			zlog.Logger.Warn().Str("user_id", userID.String()).Msg("user not found")
			respond.Fail(c.Writer, http.StatusNotFound, fmt.Errorf("user not found"))
			return
		}

		zlog.Logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to add push subscription")
		respond.Fail(c.Writer, http.StatusInternalServerError, fmt.Errorf("internal server error"))
		return
	}

	respond.Created(c.Writer, "subscription registered")
}

// Unsubscribe handles HTTP DELETE requests removing a browser subscription
// by its endpoint URL.
func (h *Handler) Unsubscribe(c *ginext.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	var req struct {
		Endpoint string `json:"endpoint"`
	}
	if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil || req.Endpoint == "" {
		zlog.Logger.Warn().Msg("missing subscription endpoint")
		respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("invalid request body"))
		return
	}

	if err := h.store.RemovePushSubscription(c.Request.Context(), userID, req.Endpoint); err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			zlog.Logger.Warn().Str("user_id", userID.String()).Msg("user not found")
			respond.Fail(c.Writer, http.StatusNotFound, fmt.Errorf("user not found"))
			return
		}

		zlog.Logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to remove push subscription")
		respond.Fail(c.Writer, http.StatusInternalServerError, fmt.Errorf("internal server error"))
		return
	}

	respond.OK(c.Writer, "subscription removed")
}

// VapidKey handles HTTP GET requests for the public VAPID key the browser
// needs to call pushManager.subscribe.
func (h *Handler) VapidKey(c *ginext.Context) {
	if h.vapidKey == "" {
		respond.Fail(c.Writer, http.StatusNotFound, fmt.Errorf("push notifications are not configured"))
		return
	}

	respond.OK(c.Writer, map[string]string{"public_key": h.vapidKey})
}

// userID extracts and validates the userId URL parameter. On failure it
// writes the error response itself and returns ok=false.
func (h *Handler) userID(c *ginext.Context) (uuid.UUID, bool) {
	idStr := c.Param("userId")
	id, err := uuid.Parse(idStr)
	if err != nil || id == uuid.Nil {
		zlog.Logger.Warn().Str("userId", idStr).Msg("invalid user id")
		respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("invalid user id"))
		return uuid.Nil, false
	}
	return id, true
}
