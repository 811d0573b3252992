package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLink_Status(t *testing.T) {
	t.Parallel()

	code := "ABC123"
	tests := []struct {
		name string
		link *Link
		want LinkStatus
	}{
		{name: "nil link", link: nil, want: LinkStatusNone},
		{name: "pending", link: &Link{GrowID: "Alice", PendingCode: &code}, want: LinkStatusPending},
		{name: "verified", link: &Link{GrowID: "Alice", Verified: true}, want: LinkStatusVerified},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.link.Status())
		})
	}
}
