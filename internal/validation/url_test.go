package validation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name         string
		url          string
		requireHTTPS bool
		wantErr      string
	}{
		{name: "empty", url: ""},
		{name: "https", url: "https://cdn.example.com/logo.png"},
		{name: "http allowed", url: "http://example.com/logo.png"},
		{name: "http rejected when https required", url: "http://example.com/logo.png", requireHTTPS: true, wantErr: "HTTPS"},
		{name: "no scheme", url: "example.com/logo.png", wantErr: "scheme"},
		{name: "no host", url: "https:///logo.png", wantErr: "host"},
		{name: "javascript", url: "javascript://alert(1)", wantErr: "http or https"},
		{name: "malformed", url: "http://[::1", wantErr: "invalid URL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.url, "logo_url", tt.requireHTTPS)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.wantErr)
			require.Contains(t, err.Error(), "logo_url")
		})
	}
}

func TestLogoURL(t *testing.T) {
	require.Equal(t, "https://example.com/logo.png", LogoURL("  https://example.com/logo.png "))
	require.Equal(t, "", LogoURL("data:image/png;base64,AAAA"))
	require.Equal(t, "", LogoURL("/static/logo.png"))
	require.Equal(t, "", LogoURL(""))
}
