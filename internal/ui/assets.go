package ui

import _ "embed"

// Script is the delegated listener served to the browser.
//
//go:embed assets/console.js
var Script []byte
