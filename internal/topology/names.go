package topology

import (
	"sort"
	"strings"
)

// ifaceExpansions maps abbreviated EOS interface prefixes to their
// canonical long form. Neighbor tables mix conventions depending on the
// reporting implementation; both sides of a link must land on the same
// form or reciprocal records never match.
var ifaceExpansions = []struct {
	short string
	long  string
}{
	{"Et", "Ethernet"},
	{"Ma", "Management"},
	{"Po", "Port-Channel"},
	{"Lo", "Loopback"},
	{"Vl", "Vlan"},
	{"Tu", "Tunnel"},
}

// NormalizeInterface expands abbreviated interface names to canonical
// long form. Names that match neither a short nor a long prefix are
// returned trimmed but otherwise untouched.
func NormalizeInterface(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return name
	}

	split := len(name)
	for i, c := range name {
		if !isNameRune(c) {
			split = i
			break
		}
	}
	prefix, rest := name[:split], name[split:]

	for _, e := range ifaceExpansions {
		if strings.EqualFold(prefix, e.short) || strings.EqualFold(prefix, e.long) {
			return e.long + rest
		}
	}
	return name
}

func isNameRune(c rune) bool {
	return c == '-' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// resolver maps reported neighbor names onto canonical inventory
// hostnames. Neighbor tables report whatever the remote device calls
// itself, frequently an FQDN while the inventory holds the short name,
// or vice versa.
type resolver struct {
	exact   map[string]string
	aliases map[string]string
	names   []string
}

// newResolver indexes the inventory for lookup. Prefix scanning checks
// longer names first so leaf10 wins over leaf1 for reported leaf10.site.
func newResolver(names []string, aliases map[string]string) *resolver {
	r := &resolver{
		exact:   make(map[string]string, len(names)),
		aliases: make(map[string]string, len(aliases)),
	}
	for _, name := range names {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" {
			continue
		}
		r.exact[key] = name
		r.names = append(r.names, name)
	}
	sort.Slice(r.names, func(i, j int) bool {
		if len(r.names[i]) != len(r.names[j]) {
			return len(r.names[i]) > len(r.names[j])
		}
		return r.names[i] < r.names[j]
	})
	for alias, target := range aliases {
		r.aliases[strings.ToLower(strings.TrimSpace(alias))] = target
	}
	return r
}

// resolve returns the canonical inventory hostname for a reported
// neighbor name. Lookup order: exact case-insensitive match, configured
// alias, then prefix match in either direction.
func (r *resolver) resolve(reported string) (string, bool) {
	key := strings.ToLower(strings.TrimSpace(reported))
	if key == "" {
		return "", false
	}
	if canonical, ok := r.exact[key]; ok {
		return canonical, true
	}
	if target, ok := r.aliases[key]; ok {
		if canonical, ok := r.exact[strings.ToLower(strings.TrimSpace(target))]; ok {
			return canonical, true
		}
	}
	for _, name := range r.names {
		lower := strings.ToLower(name)
		if strings.HasPrefix(key, lower) || strings.HasPrefix(lower, key) {
			return name, true
		}
	}
	return "", false
}
