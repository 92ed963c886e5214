package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestIssueAndParse(t *testing.T) {
	tok, exp, err := Issue("s3cret", 42, "staff", TypeAccess, time.Hour)
	require.NoError(t, err)
	require.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	c, err := Parse("Bearer "+tok, "s3cret")
	require.NoError(t, err)
	require.Equal(t, int64(42), c.UserID)
	require.Equal(t, "staff", c.Role)
	require.Equal(t, TypeAccess, c.Type)
	require.Equal(t, exp.Unix(), c.ExpiresAt.Unix())
}

func TestParse_Rejects(t *testing.T) {
	tok, _, err := Issue("s3cret", 1, "client", TypeRefresh, time.Hour)
	require.NoError(t, err)

	_, err = Parse(tok, "other")
	require.Error(t, err)

	_, err = Parse("", "s3cret")
	require.Error(t, err)

	_, err = Parse("Bearer ", "s3cret")
	require.Error(t, err)

	expired, _, err := Issue("s3cret", 1, "client", TypeAccess, -time.Minute)
	require.NoError(t, err)
	_, err = Parse(expired, "s3cret")
	require.Error(t, err)
}
