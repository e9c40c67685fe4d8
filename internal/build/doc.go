// Package build runs the icon-font pipeline.
//
// Stages run in order and each failure is tagged with its Stage:
//
//	config     font-build file and svg folder
//	manifest   meta.json parse and schema
//	reconcile  codepoints and file names (per-icon errors collected)
//	svg        glyph parse and blank checks (joins the per-icon errors)
//	font       external glyph compiler and output verification
//	render     HTML, SCSS and JS templates
//	write      distribution folder
//	stylesheet external stylesheet compiler (failures are warnings)
//	history    build ledger (failures are warnings)
//
// The manifest is synced before per-icon errors abort the run, so files
// renamed during the run keep their codepoints.
package build
