package zone

import (
	"strconv"
	"strings"
)

// DefaultTTL is reported for every parsed record. Per-line TTL columns are
// not read.
const DefaultTTL uint32 = 3600

// Kind is a record type token as written in the zone file.
type Kind string

const (
	KindA     Kind = "A"
	KindAAAA  Kind = "AAAA"
	KindCNAME Kind = "CNAME"
	KindMX    Kind = "MX"
	KindNS    Kind = "NS"
	KindTXT   Kind = "TXT"
	KindSOA   Kind = "SOA"
	KindSRV   Kind = "SRV"
	KindPTR   Kind = "PTR"
)

// Class selects the set of record kinds a zone may carry.
type Class int

const (
	// Forward zones map names to addresses.
	Forward Class = iota
	// Reverse zones map addresses to names under in-addr.arpa or ip6.arpa.
	Reverse
)

var (
	forwardKinds = []Kind{KindA, KindAAAA, KindCNAME, KindMX, KindNS, KindTXT, KindSOA, KindSRV}
	reverseKinds = []Kind{KindPTR, KindNS, KindSOA}
)

func (c Class) String() string {
	if c == Reverse {
		return "reverse"
	}
	return "forward"
}

// Kinds returns the record kinds recognised for the class.
func (c Class) Kinds() []Kind {
	if c == Reverse {
		return append([]Kind(nil), reverseKinds...)
	}
	return append([]Kind(nil), forwardKinds...)
}

// Allows reports whether k is a recognised kind for the class.
// Matching is case-sensitive, as in the files this package edits.
func (c Class) Allows(k Kind) bool {
	set := forwardKinds
	if c == Reverse {
		set = reverseKinds
	}
	for _, allowed := range set {
		if allowed == k {
			return true
		}
	}
	return false
}

// Record is one directive line of a zone body.
//
// Index is the record's position in the parse that produced it. It is not
// stored in the file: parsing again after any edit renumbers records in
// file order.
type Record struct {
	Index int
	Name  string
	Kind  Kind
	Value string
	TTL   uint32
}

const recordIDPrefix = "record-"

// ID returns the ephemeral string identity "record-<index>".
func (r Record) ID() string {
	return recordIDPrefix + strconv.Itoa(r.Index)
}

// ParseRecordID accepts either "record-<n>" or a bare index and returns the index.
func ParseRecordID(id string) (int, bool) {
	id = strings.TrimPrefix(strings.TrimSpace(id), recordIDPrefix)
	n, err := strconv.Atoi(id)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
