package email

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisplayName(t *testing.T) {
	tests := []struct {
		name    string
		address string
		want    string
	}{
		{name: "dotted local part", address: "jan.de-vries@gemeente.nl", want: "Jan Vries"},
		{name: "single token", address: "behandelaar@gemeente.nl", want: "Behandelaar"},
		{name: "plus tag kept as last token", address: "piet+zaken@example.org", want: "Piet Zaken"},
		{name: "empty local part", address: "@example.org", want: ""},
		{name: "no at sign", address: "team_vergunningen", want: "Team Vergunningen"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DisplayName(tt.address))
		})
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "jan@gemeente.nl", Normalize("  Jan@Gemeente.NL "))
	assert.Equal(t, "", Normalize("jan"))
	assert.Equal(t, "", Normalize("@gemeente.nl"))
	assert.Equal(t, "", Normalize("jan@"))
}
