package sms

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	twilioclient "github.com/twilio/twilio-go/client"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/Madhu097/foodremainder-sub000/internal/channel"
	"github.com/Madhu097/foodremainder-sub000/internal/model"
)

type fakeAPI struct {
	lastParams *openapi.CreateMessageParams
	err        error
}

func (f *fakeAPI) CreateMessage(params *openapi.CreateMessageParams) (*openapi.ApiV2010Message, error) {
	f.lastParams = params
	if f.err != nil {
		return nil, f.err
	}
	return &openapi.ApiV2010Message{}, nil
}

func testAdapter(api messageCreator) *Adapter {
	return &Adapter{cfg: Config{From: "+15550000000"}, api: api, configured: true}
}

func TestSend_Success(t *testing.T) {
	api := &fakeAPI{}
	a := testAdapter(api)

	user := model.User{Username: "bob", Mobile: "+15551234567"}
	items := []model.FoodItem{{Name: "Milk"}}

	require.NoError(t, a.Send(context.Background(), user, items))
	require.NotNil(t, api.lastParams)
	assert.Equal(t, "+15551234567", *api.lastParams.To)
	assert.Contains(t, *api.lastParams.Body, "Milk")
}

func TestSend_MissingCountryCodeStillSends(t *testing.T) {
	api := &fakeAPI{}
	a := testAdapter(api)

	user := model.User{Mobile: "5551234567"}
	require.NoError(t, a.Send(context.Background(), user, []model.FoodItem{{Name: "Milk"}}))
	assert.Equal(t, "5551234567", *api.lastParams.To)
}

func TestSend_NoMobile(t *testing.T) {
	a := testAdapter(&fakeAPI{})
	err := a.Send(context.Background(), model.User{}, nil)
	assert.ErrorIs(t, err, channel.ErrNoRecipient)
}

func TestSend_NotConfigured(t *testing.T) {
	a := New(Config{})
	assert.False(t, a.Configured())
	err := a.Send(context.Background(), model.User{Mobile: "+15551234567"}, nil)
	assert.ErrorIs(t, err, channel.ErrNotConfigured)
}

func TestClassify(t *testing.T) {
	permanent := &twilioclient.TwilioRestError{Code: 21211, Message: "invalid to"}
	assert.True(t, channel.IsPermanent(Classify(permanent)))

	optOut := &twilioclient.TwilioRestError{Code: 21610}
	assert.True(t, channel.IsPermanent(Classify(optOut)))

	transient := &twilioclient.TwilioRestError{Code: 20429} // rate limited
	assert.False(t, channel.IsPermanent(Classify(transient)))

	assert.False(t, channel.IsPermanent(Classify(assert.AnError)))
}
