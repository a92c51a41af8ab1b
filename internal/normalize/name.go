package normalize

import "strings"

// nameCutset holds the characters that start an edition or subtitle suffix
const nameCutset = "-:("

// CanonicalName is the join key shared by every platform: lowercased,
// cut at the first '-', ':' or '(' and trimmed. It is idempotent.
func CanonicalName(raw string) string {
	name := strings.ToLower(raw)
	if i := strings.IndexAny(name, nameCutset); i >= 0 {
		name = name[:i]
	}
	return strings.TrimSpace(name)
}

// SentinelAppName identifies a corrupt row in the public Google Play dump.
// Records whose raw name equals it exactly are dropped.
const SentinelAppName = "Life is Strange"
