package sim

import (
	"math"
	"time"

	lf "github.com/calvinmclean/linefollower"
)

// TrackConfig describes the line and the vehicle geometry. Distances are in sensor pitches
type TrackConfig struct {
	// MaxSpeed is the wheel speed at 100% duty, in pitches per second
	MaxSpeed float64
	// WheelBase is the distance between the wheels
	WheelBase float64
	// SensorWidth is how close to the line a sensor has to be to see it
	SensorWidth float64
	// Curvature returns the line curvature (1/pitch, positive bends left) at a distance travelled
	Curvature func(distance float64) float64
}

// DefaultTrackConfig is a gentle S-bend
func DefaultTrackConfig() TrackConfig {
	return TrackConfig{
		MaxSpeed:    400,
		WheelBase:   8,
		SensorWidth: 1,
		Curvature: func(d float64) float64 {
			return 0.02 * math.Sin(d/300)
		},
	}
}

// Track is the pose of the vehicle relative to the line
type Track struct {
	cfg TrackConfig

	// offset is where the line crosses the sensor array, 0 is the center sensor and positive is to the right
	offset float64
	// heading is the angle between the vehicle and the line, positive when the vehicle points left of the line
	heading  float64
	distance float64
}

// NewTrack starts the vehicle centered on the line
func NewTrack(cfg TrackConfig) *Track {
	def := DefaultTrackConfig()
	if cfg.MaxSpeed <= 0 {
		cfg.MaxSpeed = def.MaxSpeed
	}
	if cfg.WheelBase <= 0 {
		cfg.WheelBase = def.WheelBase
	}
	if cfg.SensorWidth <= 0 {
		cfg.SensorWidth = def.SensorWidth
	}
	if cfg.Curvature == nil {
		cfg.Curvature = func(float64) float64 { return 0 }
	}
	return &Track{cfg: cfg}
}

// Place moves the line to offset with no heading error
func (t *Track) Place(offset float64) {
	t.offset = offset
	t.heading = 0
}

// Offset is where the line crosses the array
func (t *Track) Offset() float64 {
	return t.offset
}

// Distance is how far the vehicle has driven along the line
func (t *Track) Distance() float64 {
	return t.distance
}

// Reading returns the sensors that see the line, leftmost first
func (t *Track) Reading() lf.SensorReading {
	var r lf.SensorReading
	for i := range r {
		pos := float64(i - lf.CenterSensor)
		r[i] = math.Abs(pos-t.offset) < t.cfg.SensorWidth/2
	}
	return r
}

// Levels converts Reading to raw sensor levels for the polarity
func (t *Track) Levels(p lf.LinePolarity) [lf.SensorCount]bool {
	var levels [lf.SensorCount]bool
	for i, on := range t.Reading() {
		levels[i] = on == p.Level()
	}
	return levels
}

// Advance moves the vehicle for dt. left and right are signed wheel power in [-1, 1]
func (t *Track) Advance(dt time.Duration, left, right float64) {
	secs := dt.Seconds()
	vl := left * t.cfg.MaxSpeed
	vr := right * t.cfg.MaxSpeed

	speed := (vl + vr) / 2
	turn := (vr - vl) / t.cfg.WheelBase

	t.heading += (turn - speed*t.cfg.Curvature(t.distance)) * secs
	t.heading = math.Remainder(t.heading, 2*math.Pi)
	t.offset += speed * math.Sin(t.heading) * secs
	t.distance += math.Abs(speed) * secs
}

// Power converts a motor command to signed wheel power
func Power(c lf.MotorCommand, period uint8) float64 {
	if period == 0 {
		return 0
	}
	p := math.Min(float64(c.Duty)/float64(period), 1)
	if c.Direction == lf.Backward {
		return -p
	}
	return p
}
