package push

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Madhu097/foodremainder-sub000/internal/channel"
	"github.com/Madhu097/foodremainder-sub000/internal/model"
	"github.com/Madhu097/foodremainder-sub000/internal/store/memory"
)

type fakePruner struct {
	pruned []string
}

func (f *fakePruner) RemovePushSubscription(_ context.Context, _ uuid.UUID, endpoint string) error {
	f.pruned = append(f.pruned, endpoint)
	return nil
}

func respondWith(codes map[string]int) sendFunc {
	return func(_ context.Context, _ []byte, s *webpush.Subscription, _ *webpush.Options) (*http.Response, error) {
		code, ok := codes[s.Endpoint]
		if !ok {
			code = http.StatusCreated
		}
		return &http.Response{StatusCode: code, Body: io.NopCloser(strings.NewReader(""))}, nil
	}
}

func testUser(endpoints ...string) model.User {
	u := model.User{ID: uuid.New(), Username: "frank"}
	for _, e := range endpoints {
		u.PushSubscriptions = append(u.PushSubscriptions, model.PushSubscription{Endpoint: e, P256dh: "k", Auth: "a"})
	}
	return u
}

func TestSend_AllSubscriptionsDeliver(t *testing.T) {
	a := NewWithSender(Config{}, &fakePruner{}, respondWith(nil))

	u := testUser("https://push.example/a", "https://push.example/b")
	require.NoError(t, a.Send(context.Background(), u, []model.FoodItem{{Name: "Milk"}}))
}

func TestSend_GoneSubscriptionIsPrunedButSendSucceeds(t *testing.T) {
	pruner := &fakePruner{}
	a := NewWithSender(Config{}, pruner, respondWith(map[string]int{
		"https://push.example/dead": http.StatusGone,
	}))

	u := testUser("https://push.example/dead", "https://push.example/alive")
	require.NoError(t, a.Send(context.Background(), u, []model.FoodItem{{Name: "Milk"}}))
	assert.Equal(t, []string{"https://push.example/dead"}, pruner.pruned)
}

func TestSend_AllSubscriptionsGone(t *testing.T) {
	pruner := &fakePruner{}
	a := NewWithSender(Config{}, pruner, respondWith(map[string]int{
		"https://push.example/dead1": http.StatusGone,
		"https://push.example/dead2": http.StatusNotFound,
	}))

	u := testUser("https://push.example/dead1", "https://push.example/dead2")
	err := a.Send(context.Background(), u, []model.FoodItem{{Name: "Milk"}})
	require.Error(t, err)
	assert.True(t, channel.IsPermanent(err))
	assert.Len(t, pruner.pruned, 2)
}

func TestSend_PruningMidFanoutStillReachesEverySubscription(t *testing.T) {
	st := memory.New()
	u := testUser(
		"https://push.example/dead",
		"https://push.example/b",
		"https://push.example/c",
	)
	st.PutUser(u)

	// the store itself prunes, as in production wiring
	var attempted []string
	a := NewWithSender(Config{}, st, func(_ context.Context, _ []byte, s *webpush.Subscription, _ *webpush.Options) (*http.Response, error) {
		attempted = append(attempted, s.Endpoint)
		code := http.StatusCreated
		if s.Endpoint == "https://push.example/dead" {
			code = http.StatusGone
		}
		return &http.Response{StatusCode: code, Body: io.NopCloser(strings.NewReader(""))}, nil
	})

	require.NoError(t, a.Send(context.Background(), u, []model.FoodItem{{Name: "Milk"}}))

	// every stored subscription is attempted exactly once even though
	// the dead one was pruned mid-iteration
	assert.Equal(t, []string{
		"https://push.example/dead",
		"https://push.example/b",
		"https://push.example/c",
	}, attempted)

	stored, err := st.GetUser(context.Background(), u.ID)
	require.NoError(t, err)
	require.Len(t, stored.PushSubscriptions, 2)
	assert.Equal(t, "https://push.example/b", stored.PushSubscriptions[0].Endpoint)
	assert.Equal(t, "https://push.example/c", stored.PushSubscriptions[1].Endpoint)
}

func TestSend_NoSubscriptions(t *testing.T) {
	a := NewWithSender(Config{}, &fakePruner{}, respondWith(nil))
	err := a.Send(context.Background(), model.User{ID: uuid.New()}, nil)
	assert.ErrorIs(t, err, channel.ErrNoRecipient)
}

func TestSend_MissingVAPIDKeysDisables(t *testing.T) {
	a := New(Config{}, &fakePruner{})
	assert.False(t, a.Configured())
	err := a.Send(context.Background(), testUser("https://push.example/a"), nil)
	assert.ErrorIs(t, err, channel.ErrNotConfigured)
}
