package vendors

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFullAddress(t *testing.T) {
	tests := []struct {
		name   string
		vendor Vendor
		want   string
	}{
		{
			name: "complete US address",
			vendor: Vendor{
				AddressLine1: "123 Commerce Street",
				AddressLine2: "Suite 400",
				City:         "Springfield",
				State:        "IL",
				PostalCode:   "62701",
				Country:      "US",
			},
			want: "123 Commerce Street\nSuite 400\nSpringfield, IL, 62701",
		},
		{
			name: "foreign country is appended",
			vendor: Vendor{
				AddressLine1: "10 King Street",
				City:         "Toronto",
				State:        "ON",
				PostalCode:   "M5C 1C3",
				Country:      "CA",
			},
			want: "10 King Street\nToronto, ON, M5C 1C3\nCA",
		},
		{
			name:   "city only",
			vendor: Vendor{City: "Springfield"},
			want:   "Springfield",
		},
		{
			name:   "empty address",
			vendor: Vendor{},
			want:   "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.vendor.FullAddress())
		})
	}
}
