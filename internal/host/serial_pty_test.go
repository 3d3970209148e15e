//go:build linux

package host

import (
	"fmt"
	"io"
	"log"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/relabs-tech/deviceinfo/internal/device"
	"github.com/relabs-tech/deviceinfo/internal/orientation"
)

// openPTY returns the master side of a new pseudo terminal and the path of
// its slave, which stands in for the hub's serial port.
func openPTY(t *testing.T) (*os.File, string) {
	t.Helper()
	master, err := os.OpenFile("/dev/ptmx", os.O_RDWR|unix.O_NOCTTY, 0)
	if err != nil {
		t.Skipf("no pseudo terminals: %v", err)
	}
	t.Cleanup(func() { master.Close() })

	fd := int(master.Fd())
	require.NoError(t, unix.IoctlSetPointerInt(fd, unix.TIOCSPTLCK, 0))
	n, err := unix.IoctlGetInt(fd, unix.TIOCGPTN)
	require.NoError(t, err)
	return master, fmt.Sprintf("/dev/pts/%d", n)
}

func stopWithin(t *testing.T, m *device.Manager, limit time.Duration) {
	t.Helper()
	stopped := make(chan struct{})
	go func() {
		m.Stop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(limit):
		t.Fatalf("Stop still blocked after %s", limit)
	}
}

func TestSerialStopOnSilentHub(t *testing.T) {
	_, slave := openPTY(t)

	m := device.NewManager(NewSerial(orientation.Phone, slave, 9600), device.WithLogger(log.New(io.Discard, "", 0)))
	require.NoError(t, m.Start())

	stopWithin(t, m, 2*time.Second)
}

func TestSerialReadsAcrossTimeouts(t *testing.T) {
	master, slave := openPTY(t)

	m := device.NewManager(NewSerial(orientation.Phone, slave, 9600), device.WithLogger(log.New(io.Discard, "", 0)))
	require.NoError(t, m.Start())

	// Split one sentence around a read timeout.
	line := dori("landscapeLeft", "landscapeRight") + "\r\n"
	_, err := master.WriteString(line[:8])
	require.NoError(t, err)
	time.Sleep(3 * readTimeout * time.Millisecond)
	_, err = master.WriteString(line[8:])
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return m.State().Detail == orientation.DetailLandscapeRight
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, orientation.CoarseLandscape, m.State().Coarse)

	stopWithin(t, m, 2*time.Second)
}
