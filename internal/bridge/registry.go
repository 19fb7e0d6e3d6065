package bridge

import "strings"

// Saved-key registries are semicolon-joined lists of character keys that
// have ever been saved for a resource. They exist so deletion cascades can
// enumerate every entity a character left behind.

func parseRegistry(data string) []string {
	if data == "" {
		return nil
	}

	var keys []string
	for _, k := range strings.Split(data, ";") {
		if k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

func joinRegistry(keys []string) string {
	return strings.Join(keys, ";")
}

func registryContains(keys []string, key string) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}

func registryRemove(keys []string, key string) []string {
	out := keys[:0]
	for _, k := range keys {
		if k != key {
			out = append(out, k)
		}
	}
	return out
}
