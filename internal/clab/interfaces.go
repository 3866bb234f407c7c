package clab

import "strings"

// MapInterface converts a device interface name to the container
// interface name for the node kind. ceos containers expose Ethernet3/1
// as eth3_1; other kinds keep the reported name.
func MapInterface(kind, name string) string {
	if strings.Contains(kind, "ceos") && strings.HasPrefix(name, "Ethernet") {
		name = strings.Replace(name, "Ethernet", "eth", 1)
		return strings.ReplaceAll(name, "/", "_")
	}
	return name
}

// Mappable reports whether a mapped name is a data-plane container
// interface. Management and logical interfaces never map and their
// links stay out of the lab.
func Mappable(mapped string) bool {
	return strings.Contains(mapped, "eth")
}
