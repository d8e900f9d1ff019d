package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Madhu097/foodremainder-sub000/internal/model"
	"github.com/Madhu097/foodremainder-sub000/internal/store"
)

func TestStore_GetUser(t *testing.T) {
	s := New()
	u := model.User{ID: uuid.New(), Username: "alice"}
	s.PutUser(u)

	got, err := s.GetUser(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)

	_, err = s.GetUser(context.Background(), uuid.New())
	assert.ErrorIs(t, err, store.ErrUserNotFound)
}

func TestStore_UpdateLastNotificationTime(t *testing.T) {
	s := New()
	u := model.User{ID: uuid.New()}
	s.PutUser(u)

	before := time.Now()
	require.NoError(t, s.UpdateLastNotificationTime(context.Background(), u.ID))

	got, err := s.GetUser(context.Background(), u.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastNotificationSentAt)
	assert.False(t, got.LastNotificationSentAt.Before(before))

	assert.ErrorIs(t, s.UpdateLastNotificationTime(context.Background(), uuid.New()), store.ErrUserNotFound)
}

func TestStore_UpdateNotificationPreferences_Partial(t *testing.T) {
	s := New()
	u := model.User{ID: uuid.New(), EmailNotifications: true, NotificationDays: 3}
	s.PutUser(u)

	off := false
	days := 7
	err := s.UpdateNotificationPreferences(context.Background(), u.ID, store.Preferences{
		EmailNotifications: &off,
		NotificationDays:   &days,
	})
	require.NoError(t, err)

	got, err := s.GetUser(context.Background(), u.ID)
	require.NoError(t, err)
	assert.False(t, got.EmailNotifications)
	assert.Equal(t, 7, got.NotificationDays)
	// untouched field
	assert.Equal(t, 0, got.NotificationsPerDay)
}

func TestStore_PushSubscriptions(t *testing.T) {
	s := New()
	u := model.User{ID: uuid.New()}
	s.PutUser(u)

	sub := model.PushSubscription{Endpoint: "https://push.example/abc", P256dh: "key", Auth: "auth"}
	require.NoError(t, s.AddPushSubscription(context.Background(), u.ID, sub))
	// duplicate endpoint is a no-op
	require.NoError(t, s.AddPushSubscription(context.Background(), u.ID, sub))

	got, _ := s.GetUser(context.Background(), u.ID)
	assert.Len(t, got.PushSubscriptions, 1)

	require.NoError(t, s.RemovePushSubscription(context.Background(), u.ID, sub.Endpoint))
	got, _ = s.GetUser(context.Background(), u.ID)
	assert.Empty(t, got.PushSubscriptions)
}

func TestStore_RemovePushSubscription_DoesNotMutateReturnedCopies(t *testing.T) {
	s := New()
	u := model.User{ID: uuid.New(), PushSubscriptions: []model.PushSubscription{
		{Endpoint: "https://push.example/dead"},
		{Endpoint: "https://push.example/b"},
		{Endpoint: "https://push.example/c"},
	}}
	s.PutUser(u)

	snapshot, err := s.GetUser(context.Background(), u.ID)
	require.NoError(t, err)

	require.NoError(t, s.RemovePushSubscription(context.Background(), u.ID, "https://push.example/dead"))

	// the earlier copy still sees its original subscriptions in order
	require.Len(t, snapshot.PushSubscriptions, 3)
	assert.Equal(t, "https://push.example/dead", snapshot.PushSubscriptions[0].Endpoint)
	assert.Equal(t, "https://push.example/b", snapshot.PushSubscriptions[1].Endpoint)
	assert.Equal(t, "https://push.example/c", snapshot.PushSubscriptions[2].Endpoint)

	got, _ := s.GetUser(context.Background(), u.ID)
	require.Len(t, got.PushSubscriptions, 2)
	assert.Equal(t, "https://push.example/b", got.PushSubscriptions[0].Endpoint)
}

func TestStore_GetFoodItemsByUserID(t *testing.T) {
	s := New()
	userID := uuid.New()
	s.PutFoodItem(model.FoodItem{ID: uuid.New(), UserID: userID, Name: "milk"})
	s.PutFoodItem(model.FoodItem{ID: uuid.New(), UserID: userID, Name: "eggs"})
	s.PutFoodItem(model.FoodItem{ID: uuid.New(), UserID: uuid.New(), Name: "someone else's"})

	items, err := s.GetFoodItemsByUserID(context.Background(), userID)
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestStore_SeedDemo(t *testing.T) {
	s := New()
	u := s.SeedDemo()

	got, err := s.GetUser(context.Background(), u.ID)
	require.NoError(t, err)
	assert.True(t, got.EmailNotifications)

	items, err := s.GetFoodItemsByUserID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Len(t, items, 3)
}

func TestStore_SetTelegramChatID(t *testing.T) {
	s := New()
	u := model.User{ID: uuid.New()}
	s.PutUser(u)

	require.NoError(t, s.SetTelegramChatID(context.Background(), u.ID, "12345"))
	got, _ := s.GetUser(context.Background(), u.ID)
	assert.Equal(t, "12345", got.TelegramChatID)
}
