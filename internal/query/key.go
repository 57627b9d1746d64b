package query

import "strings"

// Key identifies one cached result. The first part names the query family
// ("chats", "messages"); later parts are the arguments the fetch depends on.
type Key []string

// K builds a Key.
func K(parts ...string) Key { return Key(parts) }

// HasPrefix reports whether k starts with every part of prefix.
func (k Key) HasPrefix(prefix Key) bool {
	if len(prefix) > len(k) {
		return false
	}
	for i, p := range prefix {
		if k[i] != p {
			return false
		}
	}
	return true
}

// Family returns the first part, or "".
func (k Key) Family() string {
	if len(k) == 0 {
		return ""
	}
	return k[0]
}

func (k Key) id() string {
	return strings.Join(k, "\x1f")
}
