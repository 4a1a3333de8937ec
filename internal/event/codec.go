package event

import (
	"encoding/json"
	"fmt"
)

// Encode serializes a typed event for durable storage in the event log.
// The encoding round-trips through Decode for replay.
func Encode(evt Event) []byte {
	data, err := json.Marshal(evt)
	if err != nil {
		// All event types are plain structs; marshal cannot fail in practice.
		return []byte("{}")
	}
	return data
}

// Decode reconstructs a typed event from a stored event-log row.
// eventType is the discriminator string written alongside the payload.
func Decode(eventType string, data []byte) (Event, error) {
	var evt Event
	switch eventType {
	case "PlayerInstall":
		evt = &PlayerInstall{}
	case "Deposit":
		evt = &Deposit{}
	case "Withdrawal":
		evt = &Withdrawal{}
	case "MarketCreate":
		evt = &MarketCreate{}
	case "BetPlaced":
		evt = &BetPlaced{}
	case "SharesSold":
		evt = &SharesSold{}
	case "MarketResolve":
		evt = &MarketResolve{}
	case "Claim":
		evt = &Claim{}
	case "FeeWithdrawal":
		evt = &FeeWithdrawal{}
	case "Tick":
		evt = &Tick{}
	default:
		return nil, fmt.Errorf("unknown event type %q", eventType)
	}

	if err := json.Unmarshal(data, evt); err != nil {
		return nil, fmt.Errorf("decode %s: %w", eventType, err)
	}
	return evt, nil
}
