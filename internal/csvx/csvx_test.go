package csvx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQuotedComma(t *testing.T) {
	records := Parse("Client ID,Client Name\nC-1,\"Smith, John\"\n")

	require.Len(t, records, 1)
	assert.Equal(t, "C-1", records[0]["Client ID"])
	assert.Equal(t, "Smith, John", records[0]["Client Name"])
}

func TestParseShortRowPadsMissingColumns(t *testing.T) {
	records := Parse("Client ID,Email,Phone Number\nC-1,a@b.com\n")

	require.Len(t, records, 1)
	assert.Equal(t, "a@b.com", records[0]["Email"])

	phone, ok := records[0]["Phone Number"]
	assert.True(t, ok, "missing trailing column must be present as empty string")
	assert.Equal(t, "", phone)
}

func TestParseSkipsBlankLines(t *testing.T) {
	records := Parse("Client ID,Status\nC-1,Attended\n\n\r\nC-2,Cancelled\n")

	require.Len(t, records, 2)
	assert.Equal(t, "C-2", records[1]["Client ID"])
}

func TestParseTrimsHeadersAndValues(t *testing.T) {
	records := Parse(" Client ID , Client Name \n C-1 , Ana \n")

	require.Len(t, records, 1)
	assert.Equal(t, "Ana", records[0]["Client Name"])
}

func TestParseExtraColumnsIgnored(t *testing.T) {
	records := Parse("Client ID\nC-1,stray,values\n")

	require.Len(t, records, 1)
	assert.Equal(t, "C-1", records[0]["Client ID"])
}

func TestParseCRLF(t *testing.T) {
	records := Parse("Client ID,Client Name\r\nC-1,Ana\r\n")

	require.Len(t, records, 1)
	assert.Equal(t, "Ana", records[0]["Client Name"])
}

func TestParseHeaderOnly(t *testing.T) {
	assert.Empty(t, Parse("Client ID,Client Name\n"))
	assert.Empty(t, Parse(""))
}

func TestSplitLineUnbalancedQuote(t *testing.T) {
	// Best effort: an unterminated quote swallows the rest of the line
	// instead of failing.
	fields := splitLine(`C-1,"Smith, John`)
	assert.Equal(t, []string{"C-1", "Smith, John"}, fields)
}
