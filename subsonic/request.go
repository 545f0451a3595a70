// Copyright 2025 The Metrolist Authors
// SPDX-License-Identifier: GPL-3.0-only

package subsonic

import "net/url"

const (
	// APIVersion is the Subsonic API version we speak, sent as the "v"
	// parameter on every call.
	APIVersion = "1.16.1"

	// ClientName identifies us to the server as the "c" parameter.
	ClientName = "Metrolist"
)

// defaultQuery returns the identification parameters every call carries:
// username, token, salt, API version, client name, and the JSON format
// selector. A fresh salt/token pair is generated on every invocation, so
// two results are never byte-identical and never replayable.
func (c *Client) defaultQuery() url.Values {
	salt := newSalt()
	query := url.Values{}
	query.Set("u", c.Username)
	query.Set("t", authToken(c.Password, salt))
	query.Set("s", salt)
	query.Set("v", APIVersion)
	query.Set("c", ClientName)
	query.Set("f", "json")
	return query
}

// buildQuery merges call-specific parameters into the identification set.
// Call parameters may add keys but never replace an identification key; a
// caller smuggling in its own "u" or "t" would otherwise break signing.
func (c *Client) buildQuery(params url.Values) url.Values {
	query := c.defaultQuery()
	for key, values := range params {
		if query.Has(key) {
			continue
		}
		for _, v := range values {
			query.Add(key, v)
		}
	}
	return query
}

// endpointURL assembles the full request URL for an endpoint name, e.g.
// "ping" becomes "<host>/rest/ping.view?<query>".
func (c *Client) endpointURL(endpoint string, query url.Values) string {
	return c.Host + "/rest/" + endpoint + ".view?" + query.Encode()
}
