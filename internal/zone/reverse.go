package zone

import "regexp"

var (
	reverseV4RE = regexp.MustCompile(`^([0-9]+\.)*in-addr\.arpa$`)
	reverseV6RE = regexp.MustCompile(`^([0-9a-f]+\.)*ip6\.arpa$`)
)

// IsValidReverseZone reports whether name is a reverse-lookup zone name,
// e.g. 1.168.192.in-addr.arpa or 8.b.d.0.1.0.0.2.ip6.arpa.
func IsValidReverseZone(name string) bool {
	return reverseV4RE.MatchString(name) || reverseV6RE.MatchString(name)
}

// ClassOf returns Reverse for reverse-lookup zone names and Forward otherwise.
func ClassOf(name string) Class {
	if IsValidReverseZone(name) {
		return Reverse
	}
	return Forward
}
