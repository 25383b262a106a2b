package ratelimit

import (
	"os"
	"strings"
)

// EndpointConfig represents rate limiting configuration for a specific endpoint.
type EndpointConfig struct {
	Path   string  // Endpoint path pattern (supports prefix matching)
	Method string  // HTTP method; empty matches any
	Rate   float64 // Sustained requests per second
	Burst  int     // Burst capacity (defaults to 1 if 0)
}

// Env variables read by LoadConfig.
const (
	EnvWhitelist = "RATE_LIMIT_WHITELIST"
	EnvBlacklist = "RATE_LIMIT_BLACKLIST"
)

// LoadConfig builds a configuration with the given default rate and burst. A
// non-positive rate disables limiting. Client allow and deny lists come from the
// environment.
func LoadConfig(ratePerSecond float64, burst int) *Config {
	if ratePerSecond <= 0 {
		return &Config{Enabled: false}
	}
	return &Config{
		Enabled:         true,
		DefaultRate:     ratePerSecond,
		DefaultBurst:    burst,
		CleanupInterval: defaultCleanupInterval,
		Whitelist:       parseIPList(os.Getenv(EnvWhitelist)),
		Blacklist:       parseIPList(os.Getenv(EnvBlacklist)),
		EndpointConfigs: DefaultEndpointConfigs(),
	}
}

// DefaultEndpointConfigs returns the default endpoint-specific configurations.
func DefaultEndpointConfigs() []EndpointConfig {
	return []EndpointConfig{
		// Rebuilding refits every artifact
		{Path: "/v1/rebuild", Method: "POST", Rate: 1.0 / 60, Burst: 1},
		{Path: "/v1/runs/", Method: "DELETE", Rate: 1, Burst: 5},
	}
}

// parseIPList parses a comma-separated list of IP addresses into a map.
func parseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	for _, ip := range strings.Split(list, ",") {
		ip = strings.TrimSpace(ip)
		if ip != "" {
			result[ip] = true
		}
	}
	return result
}
