package zone

import (
	"fmt"
	"strings"
)

// SOA timers written into new zones.
const (
	TemplateRefresh = 3600
	TemplateRetry   = 1800
	TemplateExpire  = 604800
	TemplateMinimum = 86400
)

// DefaultAddress is the apex and ns1 address written into new forward zones.
const DefaultAddress = "192.168.1.1"

// TemplateParams configure a newly created zone file.
type TemplateParams struct {
	Zone       string
	SOAEmail   string
	Serial     int64
	NameServer string // defaults to ns1.<zone>. for forward zones
	Address    string // forward zones only; defaults to DefaultAddress
}

// ForwardTemplate renders the initial file of a forward zone: SOA header, an
// apex NS record and A records for the apex and ns1.
func ForwardTemplate(p TemplateParams) string {
	ns := p.NameServer
	if ns == "" {
		ns = "ns1." + p.Zone
	}
	ns = Absolute(ns)
	addr := p.Address
	if addr == "" {
		addr = DefaultAddress
	}

	var b strings.Builder
	writeSOA(&b, ns, p)
	fmt.Fprintf(&b, "@   IN  NS      %s\n", ns)
	fmt.Fprintf(&b, "@   IN  A       %s\n", addr)
	b.WriteString("\n")
	fmt.Fprintf(&b, "ns1 IN  A       %s\n", addr)
	return b.String()
}

// ReverseTemplate renders the initial file of a reverse zone: SOA header and
// an apex NS record.
func ReverseTemplate(p TemplateParams) string {
	ns := Absolute(p.NameServer)

	var b strings.Builder
	writeSOA(&b, ns, p)
	fmt.Fprintf(&b, "@   IN  NS      %s\n", ns)
	return b.String()
}

func writeSOA(b *strings.Builder, ns string, p TemplateParams) {
	fmt.Fprintf(b, "$TTL %d\n", DefaultTTL)
	fmt.Fprintf(b, "@   IN  SOA     %s %s (\n", ns, MailboxName(p.SOAEmail))
	fmt.Fprintf(b, "                %d  ; serial\n", p.Serial)
	fmt.Fprintf(b, "                %-14d ; refresh\n", TemplateRefresh)
	fmt.Fprintf(b, "                %-14d ; retry\n", TemplateRetry)
	fmt.Fprintf(b, "                %-14d ; expire\n", TemplateExpire)
	fmt.Fprintf(b, "                %d )        ; minimum\n", TemplateMinimum)
	b.WriteString("\n")
}

// MailboxName converts an e-mail address to SOA RNAME form:
// admin@example.com becomes admin.example.com.
func MailboxName(email string) string {
	return Absolute(strings.Replace(strings.TrimSpace(email), "@", ".", 1))
}

// Absolute appends the trailing root dot when missing.
func Absolute(name string) string {
	name = strings.TrimSpace(name)
	if name == "" || strings.HasSuffix(name, ".") {
		return name
	}
	return name + "."
}
