package zones

import (
	"net/netip"
	"regexp"
	"strings"

	"github.com/jroosing/bindzone/internal/zone"
	"github.com/jroosing/bindzone/internal/zoneerr"
	"github.com/miekg/dns"
)

// The first character may not be '.' (hidden files) or '-' (read as an
// option by reload commands).
var zoneNamePattern = regexp.MustCompile(`^[A-Za-z0-9_][A-Za-z0-9._-]*$`)

// validateZoneName rejects names that could leave the zones directory or
// reach a shell, and reverse names outside in-addr.arpa / ip6.arpa.
func validateZoneName(name string, class zone.Class) error {
	if name == "" {
		return zoneerr.Wrap(zoneerr.ErrInvalidFormat, nil, "zone name required")
	}
	if !zoneNamePattern.MatchString(name) {
		return zoneerr.Wrap(zoneerr.ErrAccessDenied, nil, "zone name %q", name)
	}
	if class == zone.Reverse && !zone.IsValidReverseZone(name) {
		return zoneerr.Wrap(zoneerr.ErrInvalidFormat, nil, "%q is not an in-addr.arpa or ip6.arpa zone", name)
	}
	return nil
}

func singleToken(field, v string) error {
	if v == "" {
		return zoneerr.Wrap(zoneerr.ErrInvalidFormat, nil, "%s required", field)
	}
	if strings.ContainsAny(v, " \t\r\n;") {
		return zoneerr.Wrap(zoneerr.ErrInvalidFormat, nil, "%s %q must be a single token", field, v)
	}
	return nil
}

func validateRecordInput(class zone.Class, zoneName string, in RecordInput) (zone.Record, error) {
	r := zone.Record{
		Name:  strings.TrimSpace(in.Name),
		Kind:  zone.Kind(strings.ToUpper(strings.TrimSpace(in.Kind))),
		Value: strings.TrimSpace(in.Value),
		TTL:   zone.DefaultTTL,
	}
	if err := singleToken("name", r.Name); err != nil {
		return r, err
	}
	if strings.HasPrefix(r.Name, "$") {
		return r, zoneerr.Wrap(zoneerr.ErrInvalidFormat, nil, "name %q reads as a directive", r.Name)
	}
	switch r.Kind {
	case "":
		return r, zoneerr.Wrap(zoneerr.ErrInvalidFormat, nil, "type required")
	case zone.KindSOA:
		return r, zoneerr.Wrap(zoneerr.ErrInvalidFormat, nil, "SOA is written by zone creation only")
	}
	if class == zone.Reverse && r.Kind != zone.KindPTR {
		return r, zoneerr.Wrap(zoneerr.ErrInvalidFormat, nil, "reverse zones accept only PTR records, got %s", r.Kind)
	}
	if !class.Allows(r.Kind) {
		return r, zoneerr.Wrap(zoneerr.ErrInvalidFormat, nil, "unsupported record type %s", r.Kind)
	}
	if r.Value == "" {
		return r, zoneerr.Wrap(zoneerr.ErrInvalidFormat, nil, "value required")
	}
	if strings.ContainsAny(r.Value, "\r\n") {
		return r, zoneerr.Wrap(zoneerr.ErrInvalidFormat, nil, "value must be a single line")
	}
	if err := checkRData(zoneName, r); err != nil {
		return r, err
	}
	return r, nil
}

// checkRData parses the formatted line the way named would, with the zone
// as origin, so a value named would refuse never reaches the file.
func checkRData(zoneName string, r zone.Record) error {
	zp := dns.NewZoneParser(strings.NewReader(zone.FormatRecord(r)+"\n"), dns.Fqdn(zoneName), "")
	if _, ok := zp.Next(); !ok {
		if err := zp.Err(); err != nil {
			return zoneerr.Wrap(zoneerr.ErrInvalidFormat, err, "%s record %q", r.Kind, r.Value)
		}
		return zoneerr.Wrap(zoneerr.ErrInvalidFormat, nil, "%s record %q is empty", r.Kind, r.Value)
	}
	if _, ok := zp.Next(); ok {
		return zoneerr.Wrap(zoneerr.ErrInvalidFormat, nil, "%s record %q spans more than one record", r.Kind, r.Value)
	}
	if err := zp.Err(); err != nil {
		return zoneerr.Wrap(zoneerr.ErrInvalidFormat, err, "%s record %q", r.Kind, r.Value)
	}
	return nil
}

func validateCreate(class zone.Class, req CreateRequest) error {
	if err := singleToken("soa email", req.SOAEmail); err != nil {
		return err
	}
	if req.Serial < 0 {
		return zoneerr.Wrap(zoneerr.ErrInvalidFormat, nil, "negative serial %d", req.Serial)
	}
	if req.NameServer != "" {
		if err := singleToken("name server", req.NameServer); err != nil {
			return err
		}
	}
	if req.Address != "" {
		if class == zone.Reverse {
			return zoneerr.Wrap(zoneerr.ErrInvalidFormat, nil, "address applies to forward zones only")
		}
		addr, err := netip.ParseAddr(req.Address)
		if err != nil || !addr.Is4() {
			return zoneerr.Wrap(zoneerr.ErrInvalidFormat, nil, "address %q is not an IPv4 address", req.Address)
		}
	}
	return nil
}
