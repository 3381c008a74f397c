package conversation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	handyhub_errors "handyhub/pkg/errors"
)

func TestIDIsCommutative(t *testing.T) {
	require.Equal(t, "3-7", ID(7, 3))
	require.Equal(t, ID(3, 7), ID(7, 3))
	require.Equal(t, "12-100", ID(100, 12))
}

func TestParseID(t *testing.T) {
	a, b, err := ParseID("7-3")
	require.NoError(t, err)
	require.Equal(t, int64(7), a)
	require.Equal(t, int64(3), b)
	require.Equal(t, "3-7", ID(a, b))
}

func TestParseIDRejectsMalformed(t *testing.T) {
	for _, id := range []string{"", "abc", "1", "1-", "-1", "1-2-3", "1--2", "0-4", "+1-2", "5-5", "x-2", "99999999999999999999-1"} {
		_, _, err := ParseID(id)
		require.Error(t, err, id)
		require.True(t, errors.Is(err, handyhub_errors.ErrInvalidInput), id)
	}
}
