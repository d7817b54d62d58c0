package storage

import (
	"regexp"
	"strings"

	"github.com/jroosing/bindzone/internal/zoneerr"
)

var shellSafe = regexp.MustCompile(`^[A-Za-z0-9@%+=:,./_-]+$`)

// CheckShellSafe rejects values containing anything other than a
// conservative set of characters. Values built into remote commands must
// pass this check even when they are also quoted.
func CheckShellSafe(v string) error {
	if !shellSafe.MatchString(v) {
		return zoneerr.Wrap(zoneerr.ErrAccessDenied, nil, "unsafe shell argument %q", v)
	}
	return nil
}

// QuoteArg quotes v as a single POSIX shell word.
func QuoteArg(v string) string {
	return "'" + strings.ReplaceAll(v, "'", `'\''`) + "'"
}

// RenderCommand substitutes {key} placeholders in tmpl with the checked and
// quoted values from args.
func RenderCommand(tmpl string, args map[string]string) (string, error) {
	pairs := make([]string, 0, len(args)*2)
	for k, v := range args {
		if err := CheckShellSafe(v); err != nil {
			return "", err
		}
		pairs = append(pairs, "{"+k+"}", QuoteArg(v))
	}
	return strings.NewReplacer(pairs...).Replace(tmpl), nil
}
