// Package web holds the embedded dashboard served at / and /dashboard.
package web

import _ "embed"

// DashboardHTML is the single-page dashboard. It talks to the JSON API
// (/v1/scan, /v1/redact, /v1/upload, /v1/logs) from the browser.
//
//go:embed dashboard.html
var DashboardHTML string
