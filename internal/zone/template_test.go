package zone_test

import (
	"strings"
	"testing"

	"github.com/jroosing/bindzone/internal/zone"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// firstDataLine returns the first line that is neither blank, a comment nor
// a $ directive.
func firstDataLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, ";") || strings.HasPrefix(trimmed, "$") {
			continue
		}
		return line
	}
	return ""
}

func TestForwardTemplate_SOAAndNameServer(t *testing.T) {
	text := zone.ForwardTemplate(zone.TemplateParams{
		Zone:     "example.com",
		SOAEmail: "admin@example.com",
		Serial:   1700000000,
	})

	first := firstDataLine(text)
	assert.Contains(t, first, "SOA")
	assert.Contains(t, first, "ns1.example.com.")
	assert.Contains(t, first, "admin.example.com.")
	assert.True(t, strings.HasPrefix(text, "$TTL 3600\n"))
	assert.Contains(t, text, "1700000000  ; serial")

	recs := zone.Parse(text, zone.Forward)
	require.Len(t, recs, 3)
	assert.Equal(t, zone.KindNS, recs[0].Kind)
	assert.Equal(t, "ns1.example.com.", recs[0].Value)
	assert.Equal(t, "ns1", recs[2].Name)
	assert.Equal(t, zone.KindA, recs[2].Kind)
	assert.Equal(t, zone.DefaultAddress, recs[2].Value)
}

func TestForwardTemplate_Overrides(t *testing.T) {
	text := zone.ForwardTemplate(zone.TemplateParams{
		Zone:       "example.org",
		SOAEmail:   "hostmaster.example.org.",
		Serial:     1,
		NameServer: "ns.provider.net",
		Address:    "198.51.100.7",
	})

	assert.Contains(t, firstDataLine(text), "ns.provider.net. hostmaster.example.org. (")
	recs := zone.Parse(text, zone.Forward)
	require.Len(t, recs, 3)
	assert.Equal(t, "ns.provider.net.", recs[0].Value)
	assert.Equal(t, "198.51.100.7", recs[1].Value)
}

func TestReverseTemplate(t *testing.T) {
	text := zone.ReverseTemplate(zone.TemplateParams{
		Zone:       "1.168.192.in-addr.arpa",
		SOAEmail:   "admin@example.com",
		Serial:     42,
		NameServer: "ns1.example.com.",
	})

	assert.Contains(t, firstDataLine(text), "SOA")
	recs := zone.Parse(text, zone.Reverse)
	require.Len(t, recs, 1)
	assert.Equal(t, zone.KindNS, recs[0].Kind)
	assert.Len(t, zone.Parse(text, zone.Forward), 1, "reverse template carries no address records")
}

func TestMailboxName(t *testing.T) {
	assert.Equal(t, "admin.example.com.", zone.MailboxName("admin@example.com"))
	assert.Equal(t, "admin.example.com.", zone.MailboxName("admin.example.com."))
	assert.Equal(t, "", zone.MailboxName("  "))
}

func TestIsValidReverseZone(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"1.168.192.in-addr.arpa", true},
		{"10.in-addr.arpa", true},
		{"in-addr.arpa", true},
		{"8.b.d.0.1.0.0.2.ip6.arpa", true},
		{"ip6.arpa", true},
		{"example.com", false},
		{"1.168.192.in-addr.arpa.", false},
		{"a.168.192.in-addr.arpa", false},
		{"8.B.D.0.1.0.0.2.ip6.arpa", false},
		{"g.ip6.arpa", false},
		{"1.168.192.in-addr.arpa.example.com", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, zone.IsValidReverseZone(tt.name))
		})
	}
}

func TestClassOf(t *testing.T) {
	assert.Equal(t, zone.Reverse, zone.ClassOf("2.0.192.in-addr.arpa"))
	assert.Equal(t, zone.Forward, zone.ClassOf("example.com"))
	assert.Equal(t, "reverse", zone.Reverse.String())
	assert.Equal(t, "forward", zone.Forward.String())
}

func TestClassAllows(t *testing.T) {
	for _, k := range zone.Forward.Kinds() {
		assert.True(t, zone.Forward.Allows(k), string(k))
	}
	assert.False(t, zone.Forward.Allows(zone.KindPTR))
	assert.True(t, zone.Reverse.Allows(zone.KindPTR))
	assert.True(t, zone.Reverse.Allows(zone.KindNS))
	assert.False(t, zone.Reverse.Allows(zone.KindA))
}
