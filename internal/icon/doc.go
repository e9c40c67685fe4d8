// Package icon provides the icon record types shared by every other package.
//
// This package contains data types and pure functions only. It imports
// nothing internal, so reconcile, manifest, render and build can all depend
// on it without cycles.
//
// Key constraints:
//   - Codepoints are "F" followed by four uppercase hex digits and name a
//     scalar in Supplementary Private Use Area-A (U+F0000..U+FFFFD).
//   - Codepoints are unique within a manifest and never change once assigned.
//   - Names are NFC normalized so file names from any filesystem compare equal.
package icon
