package icon

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// Icon is one record of the manifest.
//
// Extra holds members this tool does not interpret (aliases, tags, author...)
// so that rewriting the manifest never drops data another tool put there.
type Icon struct {
	Name       string
	Codepoint  string
	Version    string
	Deprecated bool
	Extra      map[string]json.RawMessage
}

// Manifest is the ordered list of known icons. Order reflects discovery
// order and is preserved across rewrites.
type Manifest []Icon

// knownFields are the members decoded into Icon's typed fields.
var knownFields = map[string]bool{
	"name":       true,
	"codepoint":  true,
	"version":    true,
	"deprecated": true,
}

// UnmarshalJSON decodes a record, keeping unknown members in Extra.
func (i *Icon) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*i = Icon{}
	if v, ok := raw["name"]; ok {
		if err := json.Unmarshal(v, &i.Name); err != nil {
			return fmt.Errorf("name: %w", err)
		}
	}
	if v, ok := raw["codepoint"]; ok {
		if err := json.Unmarshal(v, &i.Codepoint); err != nil {
			return fmt.Errorf("codepoint: %w", err)
		}
	}
	if v, ok := raw["version"]; ok {
		if err := json.Unmarshal(v, &i.Version); err != nil {
			return fmt.Errorf("version: %w", err)
		}
	}
	if v, ok := raw["deprecated"]; ok {
		if err := json.Unmarshal(v, &i.Deprecated); err != nil {
			return fmt.Errorf("deprecated: %w", err)
		}
	}

	for k, v := range raw {
		if knownFields[k] {
			continue
		}
		if i.Extra == nil {
			i.Extra = make(map[string]json.RawMessage)
		}
		i.Extra[k] = v
	}
	return nil
}

// MarshalJSON writes known members first (name, codepoint, version,
// deprecated) followed by Extra members in key order. Empty codepoint and
// version and a false deprecated flag are omitted.
func (i Icon) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	first := true
	write := func(key string, value any) error {
		encoded, err := marshalNoEscape(value)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		keyJSON, _ := marshalNoEscape(key)
		buf.Write(keyJSON)
		buf.WriteByte(':')
		buf.Write(encoded)
		return nil
	}

	if err := write("name", i.Name); err != nil {
		return nil, err
	}
	if i.Codepoint != "" {
		if err := write("codepoint", i.Codepoint); err != nil {
			return nil, err
		}
	}
	if i.Version != "" {
		if err := write("version", i.Version); err != nil {
			return nil, err
		}
	}
	if i.Deprecated {
		if err := write("deprecated", true); err != nil {
			return nil, err
		}
	}

	keys := make([]string, 0, len(i.Extra))
	for k := range i.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := write(k, i.Extra[k]); err != nil {
			return nil, err
		}
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// marshalNoEscape encodes v without HTML escaping and without the trailing
// newline json.Encoder appends.
func marshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// FileName returns the canonical on-disk name of the icon's glyph,
// u<codepoint>-<name>.svg.
func (i Icon) FileName() string {
	return CanonicalFileName(i.Codepoint, i.Name)
}

// PlainFileName returns the un-prefixed name the glyph has before
// reconciliation, <name>.svg.
func (i Icon) PlainFileName() string {
	return i.Name + SVGExt
}

// Names returns the set of names in the manifest.
func (m Manifest) Names() map[string]bool {
	names := make(map[string]bool, len(m))
	for _, rec := range m {
		names[rec.Name] = true
	}
	return names
}
