package money

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormat(t *testing.T) {
	tests := map[int]string{
		0:       "$0",
		14900:   "$149",
		149000:  "$1,490",
		1205:    "$12.05",
		1490000: "$14,900",
		-250:    "-$2.50",
	}
	for cents, want := range tests {
		assert.Equal(t, want, Format(cents), "cents=%d", cents)
	}
}
