package domain

import "strings"

// CloudPrefix is the reserved leading marker that makes a variable name
// eligible for remote log replay.
const CloudPrefix = "☁"

// IsCloudName reports whether a variable name carries the cloud marker.
func IsCloudName(name string) bool {
	return strings.HasPrefix(name, CloudPrefix)
}

// CloudVerb is the operation recorded by one cloud log entry.
type CloudVerb string

const (
	CloudCreate CloudVerb = "create_var"
	CloudSet    CloudVerb = "set_var"
	CloudDelete CloudVerb = "del_var"
	CloudRename CloudVerb = "rename_var"
)

// CloudEntry is one record of the remote append-only change log. For
// CloudRename the Value field holds the new variable name.
type CloudEntry struct {
	Verb  CloudVerb `json:"verb"`
	Name  string    `json:"name"`
	Value any       `json:"value,omitempty"`
}
