package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--driver", "file", "--path", dir}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestSessionCommands(t *testing.T) {
	dir := t.TempDir()

	_, err := run(t, dir, "whoami")
	assert.EqualError(t, err, "not logged in")

	_, err = run(t, dir, "login", "--email", "ana@lotengo.co", "--password", "mala")
	assert.Error(t, err)

	out, err := run(t, dir, "login", "--email", "ana@lotengo.co", "--password", "123456")
	require.NoError(t, err)
	assert.Contains(t, out, "Ana Gómez")

	out, err = run(t, dir, "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "u1")
	assert.Contains(t, out, "ana@lotengo.co")

	_, err = run(t, dir, "logout")
	require.NoError(t, err)
	_, err = run(t, dir, "whoami")
	assert.Error(t, err)
}

func TestStatsAndRequests(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, dir, "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "users: 5")
	assert.Contains(t, out, "unreadNotifications: 0")

	out, err = run(t, dir, "requests", "--open")
	require.NoError(t, err)
	assert.Contains(t, out, "STATUS")

	out, err = run(t, dir, "reset")
	require.NoError(t, err)
	assert.Contains(t, out, "reset")
}

func TestSeedCommand(t *testing.T) {
	out, err := run(t, t.TempDir(), "seed")
	require.NoError(t, err)
	assert.Contains(t, out, "Ferretería El Tornillo")
}
