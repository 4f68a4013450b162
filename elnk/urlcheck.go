package elnk

import (
	"net/url"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

var ipv4Pattern = regexp.MustCompile(`^\d+\.\d+\.\d+\.\d+$`)

// URLOptions controls ValidateURL
type URLOptions struct {
	RequireProtocol  bool
	AllowLocalhost   bool
	AllowIP          bool
	AllowedProtocols []string
}

// DefaultURLOptions requires an http(s) scheme and allows localhost and IP hosts
func DefaultURLOptions() URLOptions {
	return URLOptions{
		RequireProtocol:  true,
		AllowLocalhost:   true,
		AllowIP:          true,
		AllowedProtocols: []string{"http", "https"},
	}
}

// URLValidation is the outcome of ValidateURL
type URLValidation struct {
	Valid    bool   `json:"valid"`
	Error    string `json:"error,omitempty"`
	Protocol string `json:"protocol,omitempty"`
	Hostname string `json:"hostname,omitempty"`
	Pathname string `json:"pathname,omitempty"`
	Search   string `json:"search,omitempty"`
}

func invalidURL(msg string) URLValidation {
	return URLValidation{Valid: false, Error: msg}
}

// ValidateURL classifies raw as a destination URL. It never touches the network.
func ValidateURL(raw string, opts URLOptions) URLValidation {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return invalidURL("URL must be a non-empty string")
	}

	parsed, err := url.Parse(raw)
	if err != nil || parsed.Scheme == "" || parsed.Opaque != "" || parsed.Host == "" || !validPort(parsed.Port()) {
		return invalidURL("Invalid URL format")
	}

	scheme := strings.ToLower(parsed.Scheme)
	if opts.RequireProtocol && !slices.Contains(opts.AllowedProtocols, scheme) {
		return invalidURL("Protocol must be one of: " + strings.Join(opts.AllowedProtocols, ", "))
	}

	hostname := strings.ToLower(parsed.Hostname())

	if !opts.AllowLocalhost && (hostname == "localhost" || hostname == "127.0.0.1") {
		return invalidURL("Localhost URLs are not allowed")
	}

	if !opts.AllowIP && ipv4Pattern.MatchString(hostname) {
		return invalidURL("IP addresses are not allowed")
	}

	if hostname == "" {
		return invalidURL("URL must have a valid hostname")
	}

	pathname := parsed.EscapedPath()
	if pathname == "" {
		pathname = "/"
	}
	search := ""
	if parsed.RawQuery != "" {
		search = "?" + parsed.RawQuery
	}

	return URLValidation{
		Valid:    true,
		Protocol: scheme + ":",
		Hostname: hostname,
		Pathname: pathname,
		Search:   search,
	}
}

func validPort(port string) bool {
	if port == "" {
		return true
	}
	n, err := strconv.Atoi(port)
	return err == nil && n >= 0 && n <= 65535
}

// IsValidURL reports whether raw passes ValidateURL with the default options
func IsValidURL(raw string) bool {
	return ValidateURL(raw, DefaultURLOptions()).Valid
}
