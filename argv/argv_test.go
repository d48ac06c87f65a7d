package argv

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSetMarkerIsIdempotent(t *testing.T) {
	v := New([]string{"/usr/bin/echod", "-l", ":12345"})

	v.SetMarker(KeyMode, "frontend")
	v.SetMarker(KeyMode, ModeWorker)

	require.Equal(t, Vector{"/usr/bin/echod", "-Dprefork.mode=worker", "-l", ":12345"}, v)

	got, ok := v.Marker(KeyMode)
	require.True(t, ok)
	require.Equal(t, ModeWorker, got)
}

func TestSetMarkerRemovesBareOccurrence(t *testing.T) {
	v := New([]string{"exe", "a", "-Dprefork.daemon", "b"})
	v.SetMarker(KeyDaemon, "daemonized")
	require.Equal(t, Vector{"exe", "-Dprefork.daemon=daemonized", "a", "b"}, v)
}

func TestRemoveMarkerKeepsSimilarKeys(t *testing.T) {
	v := New([]string{"exe", "-Dprefork.port=7", "-Dprefork.portable=1"})
	v.RemoveMarker(KeyPort)
	require.Equal(t, Vector{"exe", "-Dprefork.portable=1"}, v)
}

func TestMarkerOnEmptyVector(t *testing.T) {
	var v Vector
	v.SetMarker(KeyDaemon, "daemonized")
	require.Equal(t, Vector{"-Dprefork.daemon=daemonized"}, v)
}

func TestIntMarkerRoundTrip(t *testing.T) {
	v := New([]string{"exe"})
	_, ok, err := v.IntMarker(KeyPort)
	require.NoError(t, err)
	require.False(t, ok)

	v.SetIntMarker(KeyPort, 11)
	n, ok, err := v.IntMarker(KeyPort)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 11, n)

	v.SetMarker(KeyPort, "eleven")
	_, ok, err = v.IntMarker(KeyPort)
	require.True(t, ok)
	require.Error(t, err)
}

func TestRemoveTail(t *testing.T) {
	v := New([]string{"exe", "a", "b", "c"})
	v.RemoveTail(2)
	require.Equal(t, Vector{"exe", "a"}, v)
	v.RemoveTail(10)
	require.Empty(t, v)
}

func TestClean(t *testing.T) {
	args := []string{"-Dprefork.mode=worker", "-l", ":1", "-Dprefork.port=3", "daemonize"}
	require.Equal(t, []string{"-l", ":1", "daemonize"}, Clean(args))
}

func TestCloneIsIndependent(t *testing.T) {
	v := New([]string{"exe", "x"})
	c := v.Clone()
	c.SetMarker(KeyDaemon, "daemonized")
	require.Len(t, v, 2)
	require.Len(t, c, 3)
}
