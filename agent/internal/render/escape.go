package render

import "strings"

// Placeholder replaces tag values that are missing or unresolved.
const Placeholder = "NA"

// A backslash in front of a character that needs escaping is doubled first
// so it cannot combine with the escape that follows.
var tagEscaper = strings.NewReplacer(
	`\ `, `\\\ `,
	`\,`, `\\\,`,
	`\=`, `\\\=`,
	" ", `\ `,
	",", `\,`,
	"=", `\=`,
	"\n", `\ `,
	"\r", "",
)

// Escape escapes a tag key, tag value or field key for line protocol.
// Strings without spaces, commas, equals signs, line breaks or a trailing
// backslash are returned unchanged.
func Escape(s string) string {
	s = tagEscaper.Replace(s)
	if strings.HasSuffix(s, `\`) {
		s += `\`
	}
	return s
}

var stringFieldEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// quote renders s as a line-protocol string field value.
func quote(s string) string {
	return `"` + stringFieldEscaper.Replace(s) + `"`
}
