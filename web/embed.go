// Package web holds the dashboard templates and static assets.
package web

import "embed"

// TemplatesFS embeds the page layout and the htmx partials.
//
//go:embed templates/*.html
var TemplatesFS embed.FS

// StaticFS embeds static assets (css/js).
//
//go:embed static/*
var StaticFS embed.FS
