package console

import (
	"errors"
	"io"
	"strconv"
	"time"

	lf "github.com/calvinmclean/linefollower"
	"github.com/calvinmclean/linefollower/telemetry"
	"github.com/calvinmclean/linefollower/vehicle"
)

// Port is the serial link to the host
type Port interface {
	io.Writer
	ReadByte() (byte, error)
	Buffered() int
}

const (
	// FlushSize is the most Flush writes at once. It is the depth of the RP2040 UART transmit FIFO
	FlushSize = 32
	queueSize = 512
)

// Device connects a Vehicle to the serial port. It implements Controller for the Console and vehicle.Observer so
// every state change is queued as a telemetry frame. Output only reaches the port through Flush, which the main loop
// calls once per iteration
type Device struct {
	port    Port
	vehicle *vehicle.Vehicle

	verbose   bool
	startTime time.Time
	now       func() time.Time

	buf     []byte
	pending []byte
	dropped uint32
}

var _ Controller = (*Device)(nil)
var _ vehicle.Observer = (*Device)(nil)

// NewDevice creates a Device writing to port. Attach must be called before the Console is polled
func NewDevice(port Port) *Device {
	return &Device{
		port: port,
		now:  time.Now,
		buf:     make([]byte, 0, 64),
		pending: make([]byte, 0, queueSize),
	}
}

// Attach sets the vehicle and starts the telemetry clock
func (d *Device) Attach(v *vehicle.Vehicle) {
	d.vehicle = v
	d.startTime = d.now()
}

// Observe implements vehicle.Observer
func (d *Device) Observe(t vehicle.Transition) {
	if !t.Changed() && !d.verbose {
		return
	}
	d.writeFrame(telemetry.Frame{
		State:   t.To,
		Reading: t.Reading,
		Command: t.Command,
		Elapsed: d.elapsed(),
	})
}

func (d *Device) writeFrame(f telemetry.Frame) {
	d.buf = telemetry.Append(d.buf[:0], f)
	d.buf = append(d.buf, '\r', '\n')
	d.enqueue(d.buf)
}

func (d *Device) writeLine(s string) {
	d.buf = append(d.buf[:0], s...)
	d.buf = append(d.buf, '\r', '\n')
	d.enqueue(d.buf)
}

// enqueue keeps whole lines only. A line that does not fit is dropped
func (d *Device) enqueue(b []byte) {
	if len(d.pending)+len(b) > cap(d.pending) {
		d.dropped++
		return
	}
	d.pending = append(d.pending, b...)
}

// Flush writes at most FlushSize queued bytes to the port
func (d *Device) Flush() {
	n := min(len(d.pending), FlushSize)
	if n == 0 {
		return
	}
	_, _ = d.port.Write(d.pending[:n])
	d.pending = d.pending[:copy(d.pending, d.pending[n:])]
}

// Pending is the number of queued bytes
func (d *Device) Pending() int {
	return len(d.pending)
}

// Dropped counts the lines that did not fit in the queue
func (d *Device) Dropped() uint32 {
	return d.dropped
}

// Debug prints the state, the commands and the PWM counters
func (d *Device) Debug() {
	if d.vehicle == nil {
		return
	}
	d.writeFrame(telemetry.Frame{
		State: d.vehicle.State(),
		Command: lf.DriveCommand{
			Left:  d.vehicle.Command(lf.Left),
			Right: d.vehicle.Command(lf.Right),
		},
		Elapsed: d.elapsed(),
	})

	d.writeLine(d.ts() + " polarity=" + d.vehicle.Polarity().String() +
		" period=" + strconv.Itoa(int(d.vehicle.Period())) +
		" counters=" + strconv.Itoa(int(d.vehicle.Counter(lf.Left))) + "/" + strconv.Itoa(int(d.vehicle.Counter(lf.Right))) +
		" dropped=" + strconv.FormatUint(uint64(d.dropped), 10))
}

// Verbose toggles telemetry on every iteration. The loop runs faster than the UART drains, so most of those frames
// are dropped and Debug reports how many
func (d *Device) Verbose() {
	d.verbose = !d.verbose
	d.writeLine(d.ts() + " verbose=" + strconv.FormatBool(d.verbose))
}

// Tune changes one entry of the vehicle's calibration
func (d *Device) Tune(s lf.SteeringState, side lf.Side, cmd lf.MotorCommand) error {
	if d.vehicle == nil {
		return errors.New("no vehicle attached")
	}
	if cmd.Duty > d.vehicle.Period() {
		return errors.New("duty exceeds period " + strconv.Itoa(int(d.vehicle.Period())))
	}
	d.vehicle.Calibration().Set(s, side, cmd)
	d.writeLine(d.ts() + " tuned " + s.String() + " " + side.String() + " " + cmd.Direction.String() + " " + strconv.Itoa(int(cmd.Duty)))
	return nil
}

// ReadByte implements Controller
func (d *Device) ReadByte() (byte, error) {
	return d.port.ReadByte()
}

// Buffered implements Controller
func (d *Device) Buffered() int {
	return d.port.Buffered()
}

func (d *Device) elapsed() time.Duration {
	if d.startTime.IsZero() {
		return 0
	}
	return d.now().Sub(d.startTime)
}

// ts returns the duration timestamp for logging
func (d *Device) ts() string {
	if d.startTime.IsZero() {
		return "[-]"
	}
	return "[" + d.elapsed().String() + "]"
}
