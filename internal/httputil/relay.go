// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import "net/url"

// Relay wraps target through a fetch relay when relayURL is non-empty. The
// target is appended as a single escaped query value, matching the
// "?url=<escaped>" convention of public CORS relays. An empty relayURL
// returns target unchanged.
func Relay(relayURL, target string) string {
	if relayURL == "" {
		return target
	}
	return relayURL + url.QueryEscape(target)
}
