package slug_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/anyrent/shopkit/pkg/slug"
)

func TestMake(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		opts     []slug.Option
		expected string
	}{
		{name: "plain", input: "acme", expected: "acme"},
		{name: "uppercase lowered", input: "AcmeRentals", expected: "acmerentals"},
		{name: "spaces become separator", input: "bike shop", expected: "bike-shop"},
		{name: "runs collapse", input: "bike -- shop", expected: "bike-shop"},
		{name: "leading and trailing trimmed", input: "--bike-shop--", expected: "bike-shop"},
		{name: "digits kept", input: "shop24", expected: "shop24"},
		{name: "nothing safe", input: "!!!", expected: ""},
		{name: "empty", input: "", expected: ""},
		{name: "custom separator", input: "bike shop", opts: []slug.Option{slug.Separator("_")}, expected: "bike_shop"},
		{name: "max length truncates", input: "averylongsubdomain", opts: []slug.Option{slug.MaxLength(8)}, expected: "averylon"},
		{name: "no trailing separator after truncation", input: "bike shop", opts: []slug.Option{slug.MaxLength(5)}, expected: "bike"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, slug.Make(tt.input, tt.opts...))
		})
	}
}
