// Package web embeds the single-page chat front end served at /.
package web

import _ "embed"

//go:embed index.html
var Index []byte
