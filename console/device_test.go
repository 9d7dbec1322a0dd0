package console

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	lf "github.com/calvinmclean/linefollower"
	"github.com/calvinmclean/linefollower/telemetry"
	"github.com/calvinmclean/linefollower/vehicle"
)

type fakePort struct {
	bytes.Buffer
	input []byte
}

func (p *fakePort) ReadByte() (byte, error) {
	b := p.input[0]
	p.input = p.input[1:]
	return b, nil
}

func (p *fakePort) Buffered() int { return len(p.input) }

type board struct {
	sensors lf.SensorReading
}

func (b *board) ReadSensor(i int) bool            { return b.sensors[i] }
func (b *board) SetEnable(lf.Side, bool)          {}
func (b *board) SetDirection(lf.Side, bool, bool) {}
func (b *board) LineJumper() bool                 { return false }
func (b *board) HaltJumper() bool                 { return false }

func newDevice(t *testing.T) (*Device, *vehicle.Vehicle, *board, *fakePort) {
	t.Helper()

	port := &fakePort{}
	dev := NewDevice(port)

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	now := start
	dev.now = func() time.Time {
		now = now.Add(250 * time.Millisecond)
		return now
	}

	b := &board{}
	cfg := vehicle.DefaultConfig()
	cfg.Observer = dev
	v, err := vehicle.New(b, cfg)
	require.NoError(t, err)
	dev.Attach(v)
	require.True(t, v.Boot())

	return dev, v, b, port
}

func drain(d *Device) {
	for d.Pending() > 0 {
		d.Flush()
	}
}

func lines(d *Device, p *fakePort) []string {
	drain(d)
	s := strings.TrimSuffix(p.String(), "\r\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\r\n")
}

func TestObserveWritesFramesOnChange(t *testing.T) {
	dev, v, b, port := newDevice(t)

	b.sensors = lf.SensorReading{false, false, true}
	v.Step()
	v.Step()
	b.sensors = lf.SensorReading{}
	v.Step()

	out := lines(dev, port)
	require.Len(t, out, 1)

	f, err := telemetry.Parse(out[0])
	require.NoError(t, err)
	assert.Equal(t, lf.SoftLeft, f.State)
	assert.Equal(t, lf.SensorReading{false, false, true}, f.Reading)
	assert.Equal(t, lf.MotorCommand{Direction: lf.Backward, Duty: 3}, f.Command.Left)
	assert.Equal(t, 250*time.Millisecond, f.Elapsed)
}

func TestVerbose(t *testing.T) {
	dev, v, b, port := newDevice(t)

	dev.Verbose()
	b.sensors[lf.CenterSensor] = true
	v.Step()
	v.Step()

	out := lines(dev, port)
	require.Len(t, out, 3)
	assert.Equal(t, "[250ms] verbose=true", out[0])
	assert.True(t, telemetry.IsFrame(out[1]))
	assert.True(t, telemetry.IsFrame(out[2]))

	port.Reset()
	dev.Verbose()
	v.Step()
	assert.Equal(t, []string{"[1s] verbose=false"}, lines(dev, port))
}

func TestDebug(t *testing.T) {
	dev, v, b, port := newDevice(t)

	b.sensors[5] = true
	v.Step()
	drain(dev)
	port.Reset()

	dev.Debug()

	out := lines(dev, port)
	require.Len(t, out, 2)
	f, err := telemetry.Parse(out[0])
	require.NoError(t, err)
	assert.Equal(t, lf.HardRight, f.State)
	assert.Equal(t, lf.MotorCommand{Direction: lf.Backward, Duty: 7}, f.Command.Right)
	assert.Contains(t, out[1], "polarity=ActiveHigh period=90 counters=0/15 dropped=0")
}

func TestTune(t *testing.T) {
	dev, v, b, port := newDevice(t)

	err := dev.Tune(lf.Centered, lf.Right, lf.MotorCommand{Direction: lf.Forward, Duty: 30})
	require.NoError(t, err)
	drain(dev)
	assert.Contains(t, port.String(), "tuned Centered Right Forward 30")

	b.sensors[lf.CenterSensor] = true
	tr := v.Step()
	assert.Equal(t, lf.MotorCommand{Direction: lf.Forward, Duty: 30}, tr.Command.Right)

	err = dev.Tune(lf.Centered, lf.Right, lf.MotorCommand{Direction: lf.Forward, Duty: 91})
	assert.EqualError(t, err, "duty exceeds period 90")
}

func TestConsoleThroughDevice(t *testing.T) {
	dev, v, _, port := newDevice(t)
	con := New(dev, port)

	port.input = []byte("C<RF05")
	con.Poll()

	assert.Equal(t, lf.MotorCommand{Direction: lf.Forward, Duty: 5}, v.Calibration().Command(lf.LostLeft).Right)
}

func TestNoVehicle(t *testing.T) {
	port := &fakePort{}
	dev := NewDevice(port)

	dev.Debug()
	assert.Zero(t, dev.Pending())
	assert.Empty(t, port.String())
	assert.EqualError(t, dev.Tune(lf.Centered, lf.Left, lf.MotorCommand{}), "no vehicle attached")
	assert.Equal(t, "[-]", dev.ts())
}

func TestFlushWritesOneChunk(t *testing.T) {
	dev, v, b, port := newDevice(t)

	dev.Verbose()
	b.sensors[lf.CenterSensor] = true
	v.Step()
	assert.Empty(t, port.String())

	queued := dev.Pending()
	require.Greater(t, queued, FlushSize)

	dev.Flush()
	assert.Equal(t, FlushSize, port.Len())
	assert.Equal(t, queued-FlushSize, dev.Pending())

	dev.Flush()
	assert.Equal(t, queued, port.Len())
	assert.Zero(t, dev.Pending())

	dev.Flush()
	assert.Equal(t, queued, port.Len())
}

func TestQueueDropsWholeLines(t *testing.T) {
	dev, v, b, port := newDevice(t)

	dev.Verbose()
	b.sensors[lf.CenterSensor] = true
	for range 100 {
		v.Step()
	}
	assert.NotZero(t, dev.Dropped())
	assert.LessOrEqual(t, dev.Pending(), queueSize)

	out := lines(dev, port)
	require.NotEmpty(t, out)
	assert.Equal(t, "[250ms] verbose=true", out[0])
	for _, line := range out[1:] {
		_, err := telemetry.Parse(line)
		assert.NoError(t, err, line)
	}
}
