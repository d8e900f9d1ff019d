// Package whatsapp implements the WhatsApp channel with two alternative
// providers: the Meta Cloud API (direct Business API) and Twilio's
// WhatsApp gateway. Both satisfy channel.Adapter for the same kind; the
// first configured one in priority order serves the channel.
package whatsapp

import (
	"github.com/wb-go/wbf/zlog"

	"github.com/Madhu097/foodremainder-sub000/internal/channel"
)

// Select returns the first configured provider, Cloud API preferred.
// Returns nil when neither provider has credentials; the dispatcher then
// simply carries no whatsapp adapter.
func Select(providers ...channel.Adapter) channel.Adapter {
	for _, p := range providers {
		if p != nil && p.Configured() {
			return p
		}
	}
	zlog.Logger.Info().Msg("whatsapp channel disabled: no provider configured")
	return nil
}
