package parser

import (
	"regexp"
	"strings"
)

// LocalExecMarker is the trailing identifier token terraform prints for
// local-exec provisioner output.
const LocalExecMarker = "(local-exec)"

var localExecSuffix = regexp.MustCompile(`\s*\(local-exec\)$`)

// ResolveKey splits a raw identifier into its resource key and local-exec flag.
//
// The marker only counts as the very last token. The key is the last
// whitespace-free token of what remains, which drops any residue printed in
// front of the identifier.
func ResolveKey(identifier string) (key string, localExec bool) {
	id := strings.TrimSpace(identifier)

	if loc := localExecSuffix.FindStringIndex(id); loc != nil {
		id = id[:loc[0]]
		localExec = true
	}

	fields := strings.Fields(id)
	if len(fields) == 0 {
		return "", localExec
	}
	return fields[len(fields)-1], localExec
}
