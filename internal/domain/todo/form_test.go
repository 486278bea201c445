package todo

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormFromValues(t *testing.T) {
	form := FormFromValues(url.Values{
		"id":       {"12", "13"},
		"newTitle": {"  padded  "},
		"empty":    {},
	})

	require.Equal(t, Form{"id": "12", "newTitle": "  padded  "}, form)

	id, err := form.ID()
	require.NoError(t, err)
	require.Equal(t, int64(12), id)

	title, err := form.NewTitle()
	require.NoError(t, err)
	require.Equal(t, "  padded  ", title, "titles are stored as submitted")
}

func TestForm_ID(t *testing.T) {
	for _, raw := range []string{"", "abc", "1.5", "12abc", " 12"} {
		_, err := Form{FieldID: raw}.ID()
		require.ErrorIs(t, err, ErrInvalidInput, "id %q", raw)
	}

	id, err := Form{FieldID: "-4"}.ID()
	require.NoError(t, err)
	require.Equal(t, int64(-4), id)
}

func TestForm_Title(t *testing.T) {
	_, err := Form{}.Title()
	require.ErrorIs(t, err, ErrInvalidInput)

	title, err := Form{FieldTitle: "Buy milk"}.Title()
	require.NoError(t, err)
	require.Equal(t, "Buy milk", title)
}

func TestOutcome_String(t *testing.T) {
	require.Equal(t, "applied", Applied.String())
	require.Equal(t, "not_applicable", NotApplicable.String())
	require.Equal(t, "failed", Failed.String())
}
