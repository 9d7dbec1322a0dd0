package tester_test

import (
	"bufio"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.bug.st/serial"

	lf "github.com/calvinmclean/linefollower"
	"github.com/calvinmclean/linefollower/console"
	"github.com/calvinmclean/linefollower/telemetry"
)

type device struct {
	serial.Port
	lines chan string
}

// These tests talk to real firmware. Set SERIAL_PORT to run them
func openDevice(t *testing.T) *device {
	t.Helper()

	name := os.Getenv("SERIAL_PORT")
	if name == "" {
		t.Skip("SERIAL_PORT is not set")
	}

	port, err := serial.Open(name, &serial.Mode{BaudRate: 115200})
	require.NoError(t, err)
	t.Cleanup(func() { port.Close() })
	require.NoError(t, port.ResetInputBuffer())

	d := &device{Port: port, lines: make(chan string, 64)}
	go func() {
		defer close(d.lines)
		scanner := bufio.NewScanner(port)
		for scanner.Scan() {
			d.lines <- strings.TrimSpace(scanner.Text())
		}
	}()
	return d
}

// readFrame returns the first telemetry frame read before the deadline
func readFrame(t *testing.T, d *device, deadline time.Duration) telemetry.Frame {
	t.Helper()

	timeout := time.After(deadline)
	for {
		select {
		case line, ok := <-d.lines:
			if !ok {
				t.Fatal("serial port closed before a frame was read")
			}
			if !telemetry.IsFrame(line) {
				continue
			}
			f, err := telemetry.Parse(line)
			require.NoError(t, err)
			return f
		case <-timeout:
			t.Fatal("no telemetry frame before deadline")
		}
	}
}

func TestSerial(t *testing.T) {
	t.Run("Debug", func(t *testing.T) {
		port := openDevice(t)

		_, err := port.Write([]byte{console.DebugCommand.Flag})
		require.NoError(t, err)

		f := readFrame(t, port, 2*time.Second)
		require.LessOrEqual(t, f.Command.Left.Duty, uint8(lf.DefaultPeriod))
		require.LessOrEqual(t, f.Command.Right.Duty, uint8(lf.DefaultPeriod))
	})

	t.Run("TuneCurrentState", func(t *testing.T) {
		port := openDevice(t)

		_, err := port.Write([]byte{console.DebugCommand.Flag})
		require.NoError(t, err)
		before := readFrame(t, port, 2*time.Second)

		want := lf.MotorCommand{Direction: lf.Forward, Duty: 5}
		_, err = port.Write(console.AppendTune(nil, before.State, lf.Left, want))
		require.NoError(t, err)
		_, err = port.Write([]byte{console.DebugCommand.Flag})
		require.NoError(t, err)

		after := readFrame(t, port, 2*time.Second)
		if after.State == before.State {
			require.Equal(t, want, after.Command.Left)
		}

		// restore
		_, err = port.Write(console.AppendTune(nil, before.State, lf.Left, before.Command.Left))
		require.NoError(t, err)
	})
}
