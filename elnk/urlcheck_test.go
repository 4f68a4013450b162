package elnk

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateURL(t *testing.T) {
	strict := DefaultURLOptions()
	strict.AllowLocalhost = false
	strict.AllowIP = false

	tests := []struct {
		name    string
		raw     string
		opts    URLOptions
		want    URLValidation
		wantErr string
	}{
		{
			name: "https url",
			raw:  "https://www.example.com/path?q=1",
			opts: DefaultURLOptions(),
			want: URLValidation{
				Valid:    true,
				Protocol: "https:",
				Hostname: "www.example.com",
				Pathname: "/path",
				Search:   "?q=1",
			},
		},
		{
			name: "http url without path",
			raw:  "http://example.com",
			opts: DefaultURLOptions(),
			want: URLValidation{Valid: true, Protocol: "http:", Hostname: "example.com", Pathname: "/"},
		},
		{
			name:    "empty",
			raw:     "",
			opts:    DefaultURLOptions(),
			wantErr: "URL must be a non-empty string",
		},
		{
			name:    "whitespace",
			raw:     "   ",
			opts:    DefaultURLOptions(),
			wantErr: "URL must be a non-empty string",
		},
		{
			name:    "not a url",
			raw:     "not-a-url",
			opts:    DefaultURLOptions(),
			wantErr: "Invalid URL format",
		},
		{
			name:    "ftp protocol",
			raw:     "ftp://example.com",
			opts:    DefaultURLOptions(),
			wantErr: "Protocol must be one of: http, https",
		},
		{
			name: "ftp protocol allowed when not required",
			raw:  "ftp://example.com/file",
			opts: URLOptions{AllowLocalhost: true, AllowIP: true},
			want: URLValidation{Valid: true, Protocol: "ftp:", Hostname: "example.com", Pathname: "/file"},
		},
		{
			name: "localhost allowed by default",
			raw:  "http://localhost:3000",
			opts: DefaultURLOptions(),
			want: URLValidation{Valid: true, Protocol: "http:", Hostname: "localhost", Pathname: "/"},
		},
		{
			name:    "localhost rejected",
			raw:     "http://localhost:3000",
			opts:    strict,
			wantErr: "Localhost URLs are not allowed",
		},
		{
			name:    "loopback rejected as localhost",
			raw:     "http://127.0.0.1/admin",
			opts:    strict,
			wantErr: "Localhost URLs are not allowed",
		},
		{
			name:    "ip rejected",
			raw:     "http://192.168.1.1",
			opts:    strict,
			wantErr: "IP addresses are not allowed",
		},
		{
			name:    "missing hostname",
			raw:     "http://:8080/path",
			opts:    DefaultURLOptions(),
			wantErr: "URL must have a valid hostname",
		},
		{
			name:    "scheme only",
			raw:     "http://",
			opts:    DefaultURLOptions(),
			wantErr: "Invalid URL format",
		},
		{
			name:    "empty authority",
			raw:     "https:///path",
			opts:    DefaultURLOptions(),
			wantErr: "Invalid URL format",
		},
		{
			name:    "port out of range",
			raw:     "https://example.com:99999",
			opts:    DefaultURLOptions(),
			wantErr: "Invalid URL format",
		},
		{
			name: "highest port",
			raw:  "https://example.com:65535/a",
			opts: DefaultURLOptions(),
			want: URLValidation{Valid: true, Protocol: "https:", Hostname: "example.com", Pathname: "/a"},
		},
		{
			name: "surrounding whitespace is trimmed",
			raw:  "  https://example.com/path \n",
			opts: DefaultURLOptions(),
			want: URLValidation{Valid: true, Protocol: "https:", Hostname: "example.com", Pathname: "/path"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ValidateURL(tt.raw, tt.opts)
			if tt.wantErr != "" {
				assert.False(t, got.Valid)
				assert.Equal(t, tt.wantErr, got.Error)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsValidURL(t *testing.T) {
	assert.True(t, IsValidURL("https://www.example.com"))
	assert.True(t, IsValidURL("http://localhost:8080"))
	assert.False(t, IsValidURL("not-a-url"))
	assert.False(t, IsValidURL(""))
	assert.False(t, IsValidURL("mailto:user@example.com"))
}
