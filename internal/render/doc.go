// Package render fills the embedded HTML, SCSS and JS templates.
//
// Placeholders are delimited as {{token}} and every substitution for one
// render happens in a single strings.Replacer pass, so replacement text is
// never scanned again and the order tokens are listed in does not matter.
// Rendering is pure: callers read and write files.
package render
