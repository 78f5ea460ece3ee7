package chat

import "context"

// Messenger is the outbound delivery contract. Implementations belong to the
// excluded platform adapter layer; delivery is fire-and-forget from the
// core's perspective and errors are only logged by callers, never used for
// control flow.
type Messenger interface {
	SendText(ctx context.Context, userID, platform, text string) error
	SendList(ctx context.Context, userID, platform string, msg ListMessage) error
	SendButtons(ctx context.Context, userID, platform string, msg ButtonMessage) error
	// SendOrderConfirmation presents order details with confirm/cancel
	// buttons.
	SendOrderConfirmation(ctx context.Context, userID, platform, orderDetails string) error
	// SendLocationRequest asks the platform to render its native
	// location-share affordance.
	SendLocationRequest(ctx context.Context, userID, platform, text string) error
}
