package cache

import (
	"net/url"
	"sort"
	"strings"
)

// KeyPrefix namespaces every key written by this package.
const KeyPrefix = "digi"

// Key identifies a cached API response.
type Key struct {
	// Path is the API path relative to the base URL (e.g. "/digimon/42").
	Path string

	// Query holds the request's query parameters.
	Query url.Values
}

// KeyFor builds a Key from a path and query.
func KeyFor(path string, query url.Values) Key {
	return Key{Path: path, Query: query}
}

// String generates a deterministic key string.
//
// Format: digi:path:name1=v1:name2=v2,v3
//
//	digi:digimon:level=Child:page=0:pageSize=20
func (k Key) String() string {
	var b strings.Builder
	b.WriteString(KeyPrefix)

	if path := strings.Trim(k.Path, "/"); path != "" {
		b.WriteByte(':')
		b.WriteString(path)
	}

	names := make([]string, 0, len(k.Query))
	for name, values := range k.Query {
		if len(values) > 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	for _, name := range names {
		values := append([]string(nil), k.Query[name]...)
		sort.Strings(values)
		b.WriteByte(':')
		b.WriteString(name)
		b.WriteByte('=')
		b.WriteString(strings.Join(values, ","))
	}

	return b.String()
}
