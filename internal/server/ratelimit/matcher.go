package ratelimit

import (
	"strings"
)

// unlimited is returned for requests that are never rate limited.
var unlimited = EndpointConfig{}

// exempt lists GET paths that bypass limiting.
var exempt = map[string]bool{
	"/health": true,
}

// MatchEndpoint returns the configuration for a request, or nil when the default
// rate applies. An exact path wins over a prefix ("/v1/runs/" covers
// "/v1/runs/{id}"), and among prefixes the longest wins. An empty Method matches
// every method.
func MatchEndpoint(path string, method string, configs []EndpointConfig) *EndpointConfig {
	if method == "GET" && exempt[path] {
		ec := unlimited
		return &ec
	}

	var best *EndpointConfig
	for i := range configs {
		ec := &configs[i]
		if ec.Method != "" && ec.Method != method {
			continue
		}
		if ec.Path == path {
			return ec
		}
		if strings.HasSuffix(ec.Path, "/") && strings.HasPrefix(path, ec.Path) &&
			(best == nil || len(ec.Path) > len(best.Path)) {
			best = ec
		}
	}
	return best
}
