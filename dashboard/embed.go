// Package dashboard provides the embedded web UI assets.
//
// The dashboard HTML, CSS and JavaScript are compiled into the binary so the
// watcher ships as a single file. The server package serves them at "/".
package dashboard

import "embed"

// Assets is an embedded filesystem containing the dashboard web UI.
//
// The filesystem structure is:
//
//	assets/
//	  index.html    - Dashboard page with inline CSS and JavaScript
//
//go:embed assets/*
var Assets embed.FS
