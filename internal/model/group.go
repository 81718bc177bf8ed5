package model

import (
	"strings"

	"github.com/rotisserie/eris"
)

// Group is a posting group: the admission band a cut-off applies to.
type Group string

const (
	GroupIP  Group = "IP"  // Integrated Programme
	GroupPG1 Group = "PG1" // Posting Group 1
	GroupPG2 Group = "PG2" // Posting Group 2
	GroupPG3 Group = "PG3" // Posting Group 3
)

// AllGroups lists every posting group in dataset column order.
var AllGroups = []Group{GroupIP, GroupPG3, GroupPG2, GroupPG1}

// String returns the dataset label of the group.
func (g Group) String() string { return string(g) }

// Integrated reports whether g is the integrated-programme band. Integrated
// programme cut-offs never have an affiliated variant.
func (g Group) Integrated() bool { return g == GroupIP }

// ParseGroup converts a label such as "pg2" into a Group.
func ParseGroup(s string) (Group, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "IP":
		return GroupIP, nil
	case "PG1":
		return GroupPG1, nil
	case "PG2":
		return GroupPG2, nil
	case "PG3":
		return GroupPG3, nil
	default:
		return "", eris.Errorf("unknown posting group: %q (valid: IP, PG1, PG2, PG3)", s)
	}
}
