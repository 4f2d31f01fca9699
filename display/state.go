package display

import (
	"slices"
	"strings"
)

// Style is one inline style declaration
type Style struct {
	Property string
	Value    string
}

// NodeState is a point-in-time copy of a node
type NodeState struct {
	Key     string
	ID      string
	Text    string
	Classes []string
	Styles  []Style
}

// HasClass reports whether the node carried class
func (s NodeState) HasClass(class string) bool {
	return slices.Contains(s.Classes, class)
}

// Style returns the value of property, or "" when unset
func (s NodeState) Style(property string) string {
	for _, st := range s.Styles {
		if st.Property == property {
			return st.Value
		}
	}
	return ""
}

// ClassString renders the classes like a class attribute
func (s NodeState) ClassString() string {
	return strings.Join(s.Classes, " ")
}

// StyleString renders the styles like a style attribute
func (s NodeState) StyleString() string {
	parts := make([]string, 0, len(s.Styles))
	for _, st := range s.Styles {
		parts = append(parts, st.Property+": "+st.Value)
	}
	return strings.Join(parts, "; ")
}
