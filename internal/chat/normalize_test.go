package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		payload *InteractivePayload
		want    *Reply
	}{
		{
			name:    "whatsapp button reply",
			payload: &InteractivePayload{Type: "button_reply", ID: "proceed_checkout", Title: "Checkout"},
			want:    &Reply{Kind: ReplyButton, ID: "proceed_checkout", Title: "Checkout"},
		},
		{
			name:    "whatsapp list reply",
			payload: &InteractivePayload{Type: "list_reply", ID: "cat_momos", Title: "Momos"},
			want:    &Reply{Kind: ReplyList, ID: "cat_momos", Title: "Momos"},
		},
		{
			name:    "messenger postback becomes button",
			payload: &InteractivePayload{Type: "postback", ID: "GET_STARTED", Title: "Get Started"},
			want:    &Reply{Kind: ReplyButton, ID: "GET_STARTED", Title: "Get Started"},
		},
		{
			name:    "messenger quick reply becomes button",
			payload: &InteractivePayload{Type: "quick_reply", ID: "pay_cod", Title: "Cash"},
			want:    &Reply{Kind: ReplyButton, ID: "pay_cod", Title: "Cash"},
		},
		{
			name:    "quick reply without title falls back to id",
			payload: &InteractivePayload{Type: "quick_reply", ID: "pay_cod"},
			want:    &Reply{Kind: ReplyButton, ID: "pay_cod", Title: "pay_cod"},
		},
		{
			name:    "unknown shape",
			payload: &InteractivePayload{Type: "sticker", ID: "x"},
			want:    nil,
		},
		{
			name:    "nil payload",
			payload: nil,
			want:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.payload)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tt.want, *got)
		})
	}
}
