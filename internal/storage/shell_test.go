package storage

import (
	"testing"

	"github.com/jroosing/bindzone/internal/zoneerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckShellSafe(t *testing.T) {
	for _, ok := range []string{"example.com", "1.168.192.in-addr.arpa", "/etc/bind/zones/db.x", "a_b-c+d=e:f,g@h%i"} {
		assert.NoError(t, CheckShellSafe(ok), ok)
	}
	for _, bad := range []string{"", "a b", "x;rm -rf /", "$(id)", "`id`", "a'b", "a\nb", "a|b", "a&b"} {
		assert.ErrorIs(t, CheckShellSafe(bad), zoneerr.ErrAccessDenied, bad)
	}
}

func TestQuoteArg(t *testing.T) {
	assert.Equal(t, `'example.com'`, QuoteArg("example.com"))
	assert.Equal(t, `'it'\''s'`, QuoteArg("it's"))
	assert.Equal(t, `''`, QuoteArg(""))
}

func TestRenderCommand(t *testing.T) {
	cmd, err := RenderCommand("rndc reload {zone}", map[string]string{"zone": "example.com"})
	require.NoError(t, err)
	assert.Equal(t, "rndc reload 'example.com'", cmd)

	cmd, err = RenderCommand("systemctl reload named", map[string]string{"zone": "example.com"})
	require.NoError(t, err)
	assert.Equal(t, "systemctl reload named", cmd)

	_, err = RenderCommand("rndc reload {zone}", map[string]string{"zone": "x; reboot"})
	assert.ErrorIs(t, err, zoneerr.ErrAccessDenied)
}
