//go:build integration && !windows

package rod_test

import (
	"syscall"
	"testing"
	"time"

	"github.com/fwojciec/pagecut/rod"
	"github.com/stretchr/testify/require"
)

func TestFetcher_Close_KillsBrowserProcess(t *testing.T) {
	t.Parallel()

	// Given a fetcher with a running browser
	fetcher, err := rod.NewFetcher(rod.WithGateway("", 0))
	require.NoError(t, err)
	pid := fetcher.LauncherPID()
	require.NotZero(t, pid)
	require.NoError(t, syscall.Kill(pid, 0), "browser should be running")

	// When it is closed twice
	require.NoError(t, fetcher.Close())
	require.NoError(t, fetcher.Close())

	// Then the process is gone
	require.Eventually(t, func() bool {
		return syscall.Kill(pid, 0) != nil
	}, 5*time.Second, 50*time.Millisecond, "browser process outlived Close")
}
