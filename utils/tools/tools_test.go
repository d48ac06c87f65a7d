package tools

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetPort(t *testing.T) {
	require.Equal(t, "3000", GetPort("127.0.0.1:3000"))
	require.Equal(t, "3000", GetPort(":3000"))
	require.Equal(t, "", GetPort("localhost"))
}

func TestFillPort(t *testing.T) {
	require.Equal(t, ":12345", FillPort("", 12345))
	require.Equal(t, ":3000", FillPort("3000", 12345))
	require.Equal(t, "127.0.0.1:3000", FillPort("127.0.0.1:3000", 12345))
	require.Equal(t, "127.0.0.1:12345", FillPort("127.0.0.1", 12345))
	require.Equal(t, "[::1]:12345", FillPort("::1", 12345))
}
