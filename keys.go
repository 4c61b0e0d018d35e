package feedcache

import "strings"

// Key joins parts with colons: <domain>:<primaryId>[:<subfield>][:<variant>].
// Each cache client owns a unique lowercase domain prefix, so namespaces
// never collide across domains.
func Key(parts ...string) string {
	return strings.Join(parts, ":")
}
