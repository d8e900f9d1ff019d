package channel

import (
	"fmt"
	"strings"
	"time"

	"github.com/Madhu097/foodremainder-sub000/internal/model"
	"github.com/Madhu097/foodremainder-sub000/internal/policy"
)

// Message is the channel-neutral rendering of an expiry notification.
// Adapters decorate it with channel-specific markup but never recompute
// day-left math themselves.
type Message struct {
	Subject string
	Lines   []string
}

// BuildMessage renders the expiring items into a subject plus one line
// per item with a human-readable urgency.
func BuildMessage(user model.User, items []model.FoodItem, now time.Time) Message {
	subject := fmt.Sprintf("%d food item(s) expiring soon", len(items))
	if len(items) == 1 {
		subject = fmt.Sprintf("%s is expiring soon", items[0].Name)
	}

	lines := make([]string, 0, len(items)+1)
	name := user.Username
	if name == "" {
		name = "there"
	}
	lines = append(lines, fmt.Sprintf("Hi %s, check your food before it goes to waste:", name))

	for _, item := range items {
		d := policy.DaysLeft(item.ExpiryDate, now)
		line := fmt.Sprintf("- %s (%s): %s", item.Name, item.Category, policy.Urgency(d))
		if item.Category == "" {
			line = fmt.Sprintf("- %s: %s", item.Name, policy.Urgency(d))
		}
		lines = append(lines, line)
	}

	return Message{Subject: subject, Lines: lines}
}

// Body joins the message lines into a plain-text body.
func (m Message) Body() string {
	return strings.Join(m.Lines, "\n")
}
