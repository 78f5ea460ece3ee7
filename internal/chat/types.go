// Package chat defines the platform-neutral messaging model the core speaks:
// inbound events, normalized interactive replies and the outbound Messenger
// contract. Concrete WhatsApp/Messenger transports live outside this
// repository and implement Messenger.
package chat

// Platforms the core knows about. The value travels inside the session
// context so gateways can tag orders with their origin.
const (
	PlatformWhatsApp  = "whatsapp"
	PlatformMessenger = "messenger"
	PlatformConsole   = "console"
)

// Location is a shared GPS location, optionally annotated by the platform.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Name      string  `json:"name,omitempty"`
	Address   string  `json:"address,omitempty"`
}

// InteractivePayload is the platform-native shape of a button tap, list
// selection, postback or quick reply, prior to normalization.
type InteractivePayload struct {
	// Type is the platform discriminator: button_reply, list_reply,
	// postback or quick_reply.
	Type string `json:"type"`
	// ID carries the reply id (WhatsApp) or payload (Messenger).
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Event is one inbound user turn.
type Event struct {
	UserID      string
	Platform    string
	Text        string
	Interactive *InteractivePayload
	Location    *Location
}

// ReplyKind is the normalized interactive kind.
type ReplyKind string

const (
	ReplyButton ReplyKind = "button"
	ReplyList   ReplyKind = "list"
)

// Reply is the normalized interactive reply consumed by the router.
type Reply struct {
	Kind  ReplyKind
	ID    string
	Title string
}

// Row is a single selectable entry in a list message.
type Row struct {
	ID          string
	Title       string
	Description string
	// ImageURL is ignored by WhatsApp list rows but used by Messenger
	// generic templates.
	ImageURL string
}

// Section groups rows in a list message.
type Section struct {
	Title string
	Rows  []Row
}

// Button is a single reply button.
type Button struct {
	ID    string
	Title string
}

// ListMessage is an interactive list prompt.
type ListMessage struct {
	Header     string
	Body       string
	Footer     string
	ButtonText string
	Sections   []Section
}

// ButtonMessage is an interactive button prompt.
type ButtonMessage struct {
	Header  string
	Body    string
	Footer  string
	Buttons []Button
}
