package chat

// Platform-native interactive types.
const (
	typeButtonReply = "button_reply"
	typeListReply   = "list_reply"
	typePostback    = "postback"
	typeQuickReply  = "quick_reply"
)

// Normalize maps a platform-native interactive payload onto the neutral
// Reply shape. Messenger postbacks and quick replies are folded into the
// button kind so downstream routing stays platform-agnostic. Returns nil for
// payloads that match no known interactive shape.
func Normalize(p *InteractivePayload) *Reply {
	if p == nil {
		return nil
	}
	switch p.Type {
	case typeButtonReply:
		return &Reply{Kind: ReplyButton, ID: p.ID, Title: p.Title}
	case typeListReply:
		return &Reply{Kind: ReplyList, ID: p.ID, Title: p.Title}
	case typePostback:
		return &Reply{Kind: ReplyButton, ID: p.ID, Title: p.Title}
	case typeQuickReply:
		// Quick replies often carry no separate title; fall back to the
		// payload itself.
		title := p.Title
		if title == "" {
			title = p.ID
		}
		return &Reply{Kind: ReplyButton, ID: p.ID, Title: title}
	}
	return nil
}
