package callout

import "strings"

// Kind identifies a callout flavour. Values are always lowercase.
type Kind string

const (
	Note      Kind = "note"
	Tip       Kind = "tip"
	Warning   Kind = "warning"
	Important Kind = "important"
	Caution   Kind = "caution"
)

// Kinds returns the supported kinds in declaration order.
func Kinds() []Kind {
	return []Kind{Note, Tip, Warning, Important, Caution}
}

// ParseKind matches s against the supported kinds, ignoring case.
func ParseKind(s string) (Kind, bool) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds() {
		if k == known {
			return k, true
		}
	}
	return "", false
}

func (k Kind) String() string { return string(k) }
