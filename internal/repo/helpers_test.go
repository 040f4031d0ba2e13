package repo

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegexSearchQuotesMetacharacters(t *testing.T) {
	cases := []struct {
		term string
		want string
	}{
		{"pump", "pump"},
		{"(unclosed", `\(unclosed`},
		{"a.b*c?", `a\.b\*c\?`},
		{"[WO-2026]", `\[WO-2026\]`},
	}
	for _, c := range cases {
		m := regexSearch(c.term)
		assert.Equal(t, c.want, m["$regex"], "term %q", c.term)
		assert.Equal(t, "i", m["$options"])
		// The produced pattern must always compile.
		pat, err := regexp.Compile(m["$regex"].(string))
		require.NoError(t, err)
		assert.True(t, pat.MatchString("xx"+c.term+"yy"))
	}
}
