// Package postgres implements the store port on PostgreSQL via wbf/dbpg.
//
// The preference flags are persisted as "true"/"false" text, an artifact
// of the document store this schema was migrated from. They are
// normalized to booleans here, at the boundary, so policy code never
// sees string-typed flags.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/dbpg"

	"github.com/Madhu097/foodremainder-sub000/internal/model"
	"github.com/Madhu097/foodremainder-sub000/internal/store"
)

type Store struct {
	db *dbpg.DB
}

func New(db *dbpg.DB) *Store {
	return &Store{db: db}
}

const userColumns = `
		id, username, email, mobile, telegram_chat_id,
		email_notifications, sms_notifications, whatsapp_notifications,
		telegram_notifications, push_notifications,
		notification_days, notifications_per_day,
		quiet_hours_start, quiet_hours_end, last_notification_sent_at`

func (s *Store) GetAllUsers(ctx context.Context) ([]model.User, error) {
	query := `
		SELECT` + userColumns + `
		FROM users;
    `

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}

		subs, err := s.pushSubscriptions(ctx, u.ID)
		if err != nil {
			return nil, err
		}
		u.PushSubscriptions = subs

		users = append(users, u)
	}

	return users, rows.Err()
}

func (s *Store) GetUser(ctx context.Context, id uuid.UUID) (model.User, error) {
	query := `
		SELECT` + userColumns + `
		FROM users
		WHERE id = $1;
    `

	row := s.db.Master.QueryRowContext(ctx, query, id)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, store.ErrUserNotFound
		}
		return model.User{}, fmt.Errorf("failed to get user: %w", err)
	}

	subs, err := s.pushSubscriptions(ctx, u.ID)
	if err != nil {
		return model.User{}, err
	}
	u.PushSubscriptions = subs

	return u, nil
}

func (s *Store) GetFoodItemsByUserID(ctx context.Context, userID uuid.UUID) ([]model.FoodItem, error) {
	query := `
		SELECT id, user_id, name, category, quantity, purchase_date, expiry_date, notes, barcode
		FROM food_items
		WHERE user_id = $1
		ORDER BY expiry_date;
    `

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get food items: %w", err)
	}
	defer rows.Close()

	var items []model.FoodItem
	for rows.Next() {
		var item model.FoodItem
		var notes, barcode sql.NullString
		if err := rows.Scan(
			&item.ID, &item.UserID, &item.Name, &item.Category, &item.Quantity,
			&item.PurchaseDate, &item.ExpiryDate, &notes, &barcode,
		); err != nil {
			return nil, err
		}
		item.Notes = notes.String
		item.Barcode = barcode.String

		items = append(items, item)
	}

	return items, rows.Err()
}

func (s *Store) UpdateLastNotificationTime(ctx context.Context, userID uuid.UUID) error {
	query := `
		UPDATE users
		SET last_notification_sent_at = NOW()
		WHERE id = $1;
    `

	res, err := s.db.ExecContext(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("failed to update last notification time: %w", err)
	}

	rows, _ := res.RowsAffected()
	if rows == 0 {
		return store.ErrUserNotFound
	}

	return nil
}

func (s *Store) UpdateNotificationPreferences(ctx context.Context, userID uuid.UUID, prefs store.Preferences) error {
	set := make([]string, 0, 9)
	args := make([]interface{}, 0, 10)

	addBool := func(col string, v *bool) {
		if v != nil {
			args = append(args, strconv.FormatBool(*v))
			set = append(set, fmt.Sprintf("%s = $%d", col, len(args)))
		}
	}
	addInt := func(col string, v *int) {
		if v != nil {
			args = append(args, *v)
			set = append(set, fmt.Sprintf("%s = $%d", col, len(args)))
		}
	}
	addString := func(col string, v *string) {
		if v != nil {
			args = append(args, *v)
			set = append(set, fmt.Sprintf("%s = $%d", col, len(args)))
		}
	}

	addBool("email_notifications", prefs.EmailNotifications)
	addBool("sms_notifications", prefs.SMSNotifications)
	addBool("whatsapp_notifications", prefs.WhatsAppNotifications)
	addBool("telegram_notifications", prefs.TelegramNotifications)
	addBool("push_notifications", prefs.PushNotifications)
	addInt("notification_days", prefs.NotificationDays)
	addInt("notifications_per_day", prefs.NotificationsPerDay)
	addString("quiet_hours_start", prefs.QuietHoursStart)
	addString("quiet_hours_end", prefs.QuietHoursEnd)

	if len(set) == 0 {
		return nil
	}

	args = append(args, userID)
	query := fmt.Sprintf("UPDATE users SET %s WHERE id = $%d;", strings.Join(set, ", "), len(args))

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update notification preferences: %w", err)
	}

	rows, _ := res.RowsAffected()
	if rows == 0 {
		return store.ErrUserNotFound
	}

	return nil
}

func (s *Store) SetTelegramChatID(ctx context.Context, userID uuid.UUID, chatID string) error {
	query := `
		UPDATE users
		SET telegram_chat_id = $1
		WHERE id = $2;
    `

	res, err := s.db.ExecContext(ctx, query, chatID, userID)
	if err != nil {
		return fmt.Errorf("failed to set telegram chat id: %w", err)
	}

	rows, _ := res.RowsAffected()
	if rows == 0 {
		return store.ErrUserNotFound
	}

	return nil
}

func (s *Store) AddPushSubscription(ctx context.Context, userID uuid.UUID, sub model.PushSubscription) error {
	query := `
		INSERT INTO push_subscriptions (user_id, endpoint, p256dh, auth)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, endpoint) DO UPDATE SET p256dh = $3, auth = $4;
    `

	if _, err := s.db.ExecContext(ctx, query, userID, sub.Endpoint, sub.P256dh, sub.Auth); err != nil {
		return fmt.Errorf("failed to add push subscription: %w", err)
	}

	return nil
}

func (s *Store) RemovePushSubscription(ctx context.Context, userID uuid.UUID, endpoint string) error {
	query := `
		DELETE FROM push_subscriptions
		WHERE user_id = $1 AND endpoint = $2;
    `

	if _, err := s.db.ExecContext(ctx, query, userID, endpoint); err != nil {
		return fmt.Errorf("failed to remove push subscription: %w", err)
	}

	return nil
}

func (s *Store) pushSubscriptions(ctx context.Context, userID uuid.UUID) ([]model.PushSubscription, error) {
	query := `
		SELECT endpoint, p256dh, auth
		FROM push_subscriptions
		WHERE user_id = $1;
    `

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get push subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []model.PushSubscription
	for rows.Next() {
		var sub model.PushSubscription
		if err := rows.Scan(&sub.Endpoint, &sub.P256dh, &sub.Auth); err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}

	return subs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(row rowScanner) (model.User, error) {
	var (
		u                                     model.User
		mobile, chatID, quietStart, quietEnd  sql.NullString
		emailOn, smsOn, waOn, tgOn, pushOn    sql.NullString
		notificationDays, notificationsPerDay sql.NullInt64
		lastSent                              sql.NullTime
	)

	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &mobile, &chatID,
		&emailOn, &smsOn, &waOn, &tgOn, &pushOn,
		&notificationDays, &notificationsPerDay,
		&quietStart, &quietEnd, &lastSent,
	)
	if err != nil {
		return model.User{}, err
	}

	u.Mobile = mobile.String
	u.TelegramChatID = chatID.String
	u.EmailNotifications = parseFlag(emailOn)
	u.SMSNotifications = parseFlag(smsOn)
	u.WhatsAppNotifications = parseFlag(waOn)
	u.TelegramNotifications = parseFlag(tgOn)
	u.PushNotifications = parseFlag(pushOn)
	u.NotificationDays = int(notificationDays.Int64)
	u.NotificationsPerDay = int(notificationsPerDay.Int64)
	u.QuietHoursStart = quietStart.String
	u.QuietHoursEnd = quietEnd.String
	if lastSent.Valid {
		t := lastSent.Time
		u.LastNotificationSentAt = &t
	}

	return u, nil
}

// parseFlag normalizes legacy "true"/"false" text flags. Anything
// unparseable counts as disabled.
func parseFlag(v sql.NullString) bool {
	if !v.Valid {
		return false
	}
	b, err := strconv.ParseBool(v.String)
	if err != nil {
		return false
	}
	return b
}
