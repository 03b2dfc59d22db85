package mkbsc

import (
	"strconv"
	"strings"
)

// Style selects a textual rendering of a knowledge state.
type Style int

const (
	// StyleCompact renders the nested-set notation: base labels
	// verbatim, nested states as "({a, b}, {c})".
	StyleCompact Style = iota
	// StyleNice renders a semi-compact form: top-level per-player sets
	// on separate lines, inner levels joined with "-" and nested
	// members parenthesized.
	StyleNice
	// StyleVerbose renders indented "Player n knows:" prose. Not
	// recommended for deeply iterated games.
	StyleVerbose
)

// FormatOptions is the explicit configuration for Format. There is no
// package-level formatting state; the same value always renders the
// same way for the same options.
type FormatOptions struct {
	Style Style
}

// Format renders a knowledge state as text. The output is a pure
// function of the state and the options: members appear in canonical
// set order.
func Format(s *State, opts FormatOptions) string {
	switch opts.Style {
	case StyleNice:
		return nice(s, 0)
	case StyleVerbose:
		return verbose(s, 0)
	default:
		return compact(s)
	}
}

// Compact is shorthand for Format with StyleCompact.
func Compact(s *State) string { return Format(s, FormatOptions{Style: StyleCompact}) }

// Nice is shorthand for Format with StyleNice.
func Nice(s *State) string { return Format(s, FormatOptions{Style: StyleNice}) }

// IsoCheck renders the most compact view of a state: the comma-joined
// labels of the base-level states it still considers possible.
func IsoCheck(s *State) (string, error) {
	base, err := s.ConsistentBase()
	if err != nil {
		return "", err
	}
	labels := make([]string, 0, base.Len())
	for _, b := range base.members {
		labels = append(labels, b.Label())
	}
	return strings.Join(labels, ", "), nil
}

func compact(s *State) string {
	if s.IsBase() {
		return s.label
	}
	var b strings.Builder
	b.WriteByte('(')
	for p, k := range s.know {
		if p > 0 {
			b.WriteString(", ")
		}
		b.WriteByte('{')
		for i, m := range k.members {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(compact(m))
		}
		b.WriteByte('}')
	}
	b.WriteByte(')')
	return b.String()
}

func nice(s *State, level int) string {
	if s.IsBase() {
		return s.label
	}
	if level == 0 {
		lines := make([]string, 0, len(s.know))
		for _, k := range s.know {
			parts := make([]string, 0, k.Len())
			for _, m := range k.members {
				parts = append(parts, nice(m, level+1))
			}
			lines = append(lines, "{"+strings.Join(parts, ", ")+"}")
		}
		return strings.Join(lines, "\n")
	}
	groups := make([]string, 0, len(s.know))
	for _, k := range s.know {
		var b strings.Builder
		for _, m := range k.members {
			if m.IsBase() {
				b.WriteString(m.label)
			} else {
				b.WriteByte('(')
				b.WriteString(nice(m, level+1))
				b.WriteByte(')')
			}
		}
		groups = append(groups, b.String())
	}
	return strings.Join(groups, "-")
}

const verboseIndent = "\t"

func verbose(s *State, level int) string {
	pad := strings.Repeat(verboseIndent, level)
	if s.IsBase() {
		return pad + "We are in " + s.label + "\n"
	}
	var b strings.Builder
	for p, k := range s.know {
		b.WriteString(pad + "Player " + strconv.Itoa(p) + " knows:\n")
		for i, m := range k.members {
			if i > 0 {
				b.WriteString(strings.Repeat(verboseIndent, level+1) + "or\n")
			}
			b.WriteString(verbose(m, level+1))
		}
	}
	return b.String()
}
