package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTotal(t *testing.T) {
	cases := []struct {
		net  float64
		want float64
	}{
		{10.00, 11.50},
		{12.00, 13.80},
		{5.00, 5.75},
		{1.99, 2.29},
		{0.10, 0.12},
	}
	for _, tc := range cases {
		assert.InDelta(t, tc.want, Total(tc.net), 1e-9, "net %.2f", tc.net)
	}
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "13.80", Format(Total(12.00)))
	assert.Equal(t, "11.50", Format(Total(10.00)))
	assert.Equal(t, "$5.75", USD(Total(5.00)))
}
