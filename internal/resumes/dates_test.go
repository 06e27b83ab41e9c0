package resumes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseYear_YearMonth(t *testing.T) {
	year, err := ParseYear("2019-03")
	require.NoError(t, err)
	assert.Equal(t, 2019, year)
}

func TestParseYear_FullDateParsesByPrefix(t *testing.T) {
	year, err := ParseYear("2019-03-15")
	require.NoError(t, err)
	assert.Equal(t, 2019, year)

	year, err = ParseYear("2021-07-01T00:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, 2021, year)
}

func TestParseYear_TrimsWhitespace(t *testing.T) {
	year, err := ParseYear("  2019-03  ")
	require.NoError(t, err)
	assert.Equal(t, 2019, year)
}

func TestParseYear_Invalid(t *testing.T) {
	for _, raw := range []string{"", "2019", "19-03", "abcd-ef", "2019-13", "2019/03"} {
		_, err := ParseYear(raw)
		assert.Error(t, err, "input %q", raw)
	}
}
