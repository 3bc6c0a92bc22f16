// Package embed holds the client side assets served by live.
package embed

import _ "embed"

// LiveJS is the live client.
//
//go:embed live.js
var LiveJS []byte
