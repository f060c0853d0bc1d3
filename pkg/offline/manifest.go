package offline

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
)

// LoadManifest reads the resources to pre-cache from path. Two formats are
// accepted:
//
//	["/", "/app.js", "/favicon.png"]
//	{"app.js": "app.a1b2c3d4.js", "styles.css": "styles.e5f6.css"}
//
// For the map form the fingerprinted names are cached. Entries without a
// leading slash are made absolute. Duplicates are dropped.
func LoadManifest(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseManifest(data)
}

// ParseManifest parses manifest data in either LoadManifest format.
func ParseManifest(data []byte) ([]string, error) {
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		var entries map[string]string
		if err := json.Unmarshal(data, &entries); err != nil {
			return nil, fmt.Errorf("offline: parse manifest: %w", err)
		}
		list = make([]string, 0, len(entries))
		for _, fingerprinted := range entries {
			list = append(list, fingerprinted)
		}
		sort.Strings(list)
	}

	seen := make(map[string]bool, len(list))
	resources := make([]string, 0, len(list))
	for _, r := range list {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		if !strings.HasPrefix(r, "/") {
			r = "/" + r
		}
		if seen[r] {
			continue
		}
		seen[r] = true
		resources = append(resources, r)
	}
	return resources, nil
}
