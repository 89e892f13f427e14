// Package site holds the presentation state around the contact form: page
// content, theme preference and go-theme palettes, navigation, the FAQ
// accordion, stat counters, the hero typewriter, the services filter,
// newsletter signup and consultation scheduling. Everything here is plain
// state with no I/O beyond the key/value store, so handlers and templates
// share one implementation instead of per-page copies.
package site
