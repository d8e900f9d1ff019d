// Package memory provides a mutex-guarded in-memory Store, used for
// development and as the default when no database is configured.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Madhu097/foodremainder-sub000/internal/model"
	"github.com/Madhu097/foodremainder-sub000/internal/store"
)

type Store struct {
	mu    sync.RWMutex
	users map[uuid.UUID]model.User
	items map[uuid.UUID][]model.FoodItem // keyed by user id
}

func New() *Store {
	return &Store{
		users: make(map[uuid.UUID]model.User),
		items: make(map[uuid.UUID][]model.FoodItem),
	}
}

// PutUser inserts or replaces a user record. Used by seeding and tests.
func (s *Store) PutUser(u model.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
}

// PutFoodItem appends an item under its owner.
func (s *Store) PutFoodItem(item model.FoodItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[item.UserID] = append(s.items[item.UserID], item)
}

// SeedDemo inserts a demo user with a mixed pantry so a fresh
// memory-backed process has something to sweep. Returns the seeded user.
func (s *Store) SeedDemo() model.User {
	now := time.Now()
	u := model.User{
		ID:                  uuid.New(),
		Username:            "demo",
		Email:               "demo@example.com",
		EmailNotifications:  true,
		NotificationDays:    3,
		NotificationsPerDay: 1,
	}
	s.PutUser(u)

	s.PutFoodItem(model.FoodItem{ID: uuid.New(), UserID: u.ID, Name: "Milk", Category: "Dairy", ExpiryDate: now.AddDate(0, 0, 1)})
	s.PutFoodItem(model.FoodItem{ID: uuid.New(), UserID: u.ID, Name: "Yogurt", Category: "Dairy", ExpiryDate: now.AddDate(0, 0, 2)})
	s.PutFoodItem(model.FoodItem{ID: uuid.New(), UserID: u.ID, Name: "Rice", Category: "Pantry", ExpiryDate: now.AddDate(0, 6, 0)})
	return u
}

func (s *Store) GetAllUsers(_ context.Context) ([]model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]model.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u)
	}
	return users, nil
}

func (s *Store) GetUser(_ context.Context, id uuid.UUID) (model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return model.User{}, store.ErrUserNotFound
	}
	return u, nil
}

func (s *Store) GetFoodItemsByUserID(_ context.Context, userID uuid.UUID) ([]model.FoodItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := s.items[userID]
	out := make([]model.FoodItem, len(items))
	copy(out, items)
	return out, nil
}

func (s *Store) UpdateLastNotificationTime(_ context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return store.ErrUserNotFound
	}
	now := time.Now()
	u.LastNotificationSentAt = &now
	s.users[userID] = u
	return nil
}

func (s *Store) UpdateNotificationPreferences(_ context.Context, userID uuid.UUID, prefs store.Preferences) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return store.ErrUserNotFound
	}

	if prefs.EmailNotifications != nil {
		u.EmailNotifications = *prefs.EmailNotifications
	}
	if prefs.SMSNotifications != nil {
		u.SMSNotifications = *prefs.SMSNotifications
	}
	if prefs.WhatsAppNotifications != nil {
		u.WhatsAppNotifications = *prefs.WhatsAppNotifications
	}
	if prefs.TelegramNotifications != nil {
		u.TelegramNotifications = *prefs.TelegramNotifications
	}
	if prefs.PushNotifications != nil {
		u.PushNotifications = *prefs.PushNotifications
	}
	if prefs.NotificationDays != nil {
		u.NotificationDays = *prefs.NotificationDays
	}
	if prefs.NotificationsPerDay != nil {
		u.NotificationsPerDay = *prefs.NotificationsPerDay
	}
	if prefs.QuietHoursStart != nil {
		u.QuietHoursStart = *prefs.QuietHoursStart
	}
	if prefs.QuietHoursEnd != nil {
		u.QuietHoursEnd = *prefs.QuietHoursEnd
	}

	s.users[userID] = u
	return nil
}

func (s *Store) SetTelegramChatID(_ context.Context, userID uuid.UUID, chatID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return store.ErrUserNotFound
	}
	u.TelegramChatID = chatID
	s.users[userID] = u
	return nil
}

func (s *Store) AddPushSubscription(_ context.Context, userID uuid.UUID, sub model.PushSubscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return store.ErrUserNotFound
	}
	for _, existing := range u.PushSubscriptions {
		if existing.Endpoint == sub.Endpoint {
			return nil
		}
	}
	u.PushSubscriptions = append(u.PushSubscriptions, sub)
	s.users[userID] = u
	return nil
}

func (s *Store) RemovePushSubscription(_ context.Context, userID uuid.UUID, endpoint string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return store.ErrUserNotFound
	}

	// Filter into a fresh slice: user copies handed out earlier share
	// the old backing array and may still be iterating it.
	kept := make([]model.PushSubscription, 0, len(u.PushSubscriptions))
	for _, sub := range u.PushSubscriptions {
		if sub.Endpoint != endpoint {
			kept = append(kept, sub)
		}
	}
	u.PushSubscriptions = kept
	s.users[userID] = u
	return nil
}
