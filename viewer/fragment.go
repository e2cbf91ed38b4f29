package viewer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

// FragmentPrefix separates the viewer host from the encoded state.
const FragmentPrefix = "#!"

const upperhex = "0123456789ABCDEF"

// fragmentSafe reports bytes left unescaped: the encodeURI set minus the characters
// the viewer also escapes, ! ' ( ) * ; , and #.
func fragmentSafe(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	switch c {
	case '-', '_', '.', '~', '/', '?', ':', '@', '&', '=', '+', '$':
		return true
	}
	return false
}

func escapeFragment(s []byte) string {
	var b strings.Builder
	b.Grow(len(s) * 2)
	for _, c := range s {
		if fragmentSafe(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&15])
	}
	return b.String()
}

// Encode serializes the state as percent-escaped JSON suitable for a URL fragment.
// Keys appear in State field order and unset optional fields are left out.
func Encode(s *State) (string, error) {
	if s == nil {
		return "", fmt.Errorf("no viewer state to encode")
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return "", fmt.Errorf("can't encode viewer state: %v", err)
	}
	return escapeFragment(bytes.TrimSuffix(buf.Bytes(), []byte("\n"))), nil
}

// Decode parses an encoded state.  It accepts the bare encoding, the encoding with
// a leading "#!", or a whole link.
func Decode(fragment string) (*State, error) {
	if i := strings.Index(fragment, FragmentPrefix); i >= 0 {
		fragment = fragment[i+len(FragmentPrefix):]
	}
	raw, err := url.PathUnescape(fragment)
	if err != nil {
		return nil, fmt.Errorf("bad fragment escaping: %v", err)
	}
	var s State
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return nil, fmt.Errorf("bad viewer state: %v", err)
	}
	return &s, nil
}

// Link returns the viewer URL that opens the given state, host + "#!" + fragment.
func Link(host string, s *State) (string, error) {
	fragment, err := Encode(s)
	if err != nil {
		return "", err
	}
	return host + FragmentPrefix + fragment, nil
}
