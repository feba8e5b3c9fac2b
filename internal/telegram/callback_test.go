package telegram

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseActionRoundTrip(t *testing.T) {
	actions := []Action{
		{Kind: ActionDeleteRequest, Word: "apple"},
		{Kind: ActionDeleteConfirm, Word: "apple"},
		{Kind: ActionDeleteCancel, Word: "apple"},
		{Kind: ActionClue, Word: "apple"},
		{Kind: ActionExplain, Word: "apple"},
		{Kind: ActionSort, Sort: SortLexical},
		{Kind: ActionSort, Sort: SortEaseAsc},
		{Kind: ActionSort, Sort: SortEaseDesc},
		{Kind: ActionPage, Page: 3},
	}
	for _, want := range actions {
		data, ok := want.Encode()
		require.True(t, ok, "%+v", want)
		got, err := ParseAction(data)
		require.NoError(t, err, data)
		assert.Equal(t, want, got, data)
	}
}

func TestParseActionRejectsGarbage(t *testing.T) {
	for _, data := range []string{
		"",
		"nonsense",
		"sort:upside_down",
		"page:abc",
		"page:0",
		"page:-1",
	} {
		_, err := ParseAction(data)
		assert.Error(t, err, data)
	}
}

func TestEncodeEnforcesByteLimit(t *testing.T) {
	long := Action{Kind: ActionDeleteRequest, Word: strings.Repeat("x", 60)}
	_, ok := long.Encode()
	assert.False(t, ok, "del_req: plus 60 bytes exceeds 64")

	fits := Action{Kind: ActionDeleteRequest, Word: strings.Repeat("x", 56)}
	data, ok := fits.Encode()
	require.True(t, ok)
	assert.LessOrEqual(t, len(data), 64)

	_, ok = Action{Kind: ActionUnknown}.Encode()
	assert.False(t, ok)
}
