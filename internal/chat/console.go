package chat

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// ConsoleMessenger renders outbound messages to a writer. It stands in for
// the real platform adapters in the local chat harness and in examples.
type ConsoleMessenger struct {
	mu sync.Mutex
	w  io.Writer
}

// NewConsoleMessenger creates a console messenger writing to w.
func NewConsoleMessenger(w io.Writer) *ConsoleMessenger {
	return &ConsoleMessenger{w: w}
}

func (m *ConsoleMessenger) printf(format string, args ...any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fmt.Fprintf(m.w, format, args...)
}

func (m *ConsoleMessenger) SendText(_ context.Context, _, _, text string) error {
	m.printf("%s\n", text)
	return nil
}

func (m *ConsoleMessenger) SendList(_ context.Context, _, _ string, msg ListMessage) error {
	m.printf("── %s ──\n%s\n", msg.Header, msg.Body)
	for _, sec := range msg.Sections {
		m.printf("[%s]\n", sec.Title)
		for _, row := range sec.Rows {
			m.printf("  /tap %-24s %s — %s\n", row.ID, row.Title, row.Description)
		}
	}
	if msg.Footer != "" {
		m.printf("(%s)\n", msg.Footer)
	}
	return nil
}

func (m *ConsoleMessenger) SendButtons(_ context.Context, _, _ string, msg ButtonMessage) error {
	m.printf("── %s ──\n%s\n", msg.Header, msg.Body)
	for _, b := range msg.Buttons {
		m.printf("  /tap %-24s [%s]\n", b.ID, b.Title)
	}
	if msg.Footer != "" {
		m.printf("(%s)\n", msg.Footer)
	}
	return nil
}

func (m *ConsoleMessenger) SendOrderConfirmation(_ context.Context, _, _, orderDetails string) error {
	m.printf("── 🧾 Confirm Your Order ──\n%s\n  /tap %-24s [Confirm ✅]\n  /tap %-24s [Cancel ❌]\n",
		orderDetails, "confirm_order", "cancel_order")
	return nil
}

func (m *ConsoleMessenger) SendLocationRequest(_ context.Context, _, _, text string) error {
	m.printf("%s\n(share a location with /loc <lat>,<lng>[,name])\n", text)
	return nil
}
