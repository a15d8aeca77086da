package i18n_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/loom/pkg/i18n"
)

func TestParseAcceptLanguage(t *testing.T) {
	t.Parallel()

	available := []string{"en", "de", "pl"}
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"empty header", "", "en"},
		{"exact", "pl", "pl"},
		{"region matches base", "de-DE", "de"},
		{"quality order", "fr;q=0.9,pl;q=0.8,de;q=0.5", "pl"},
		{"no match", "ja", "en"},
		{"malformed", ";;;q=x", "en"},
		{"oversized", strings.Repeat("x", 5000), "en"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, i18n.ParseAcceptLanguage(tt.header, available), tt.name)
	}

	require.Empty(t, i18n.ParseAcceptLanguage("en", nil))
}
