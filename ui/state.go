package ui

import (
	"image/color"
	"strconv"

	lf "github.com/calvinmclean/linefollower"
)

var (
	colorOnLine  = color.RGBA{R: 20, G: 20, B: 20, A: 255}
	colorOffLine = color.RGBA{R: 220, G: 220, B: 220, A: 255}

	colorCentered = color.RGBA{R: 0, G: 128, B: 0, A: 255}
	colorSoft     = color.RGBA{R: 180, G: 140, B: 0, A: 255}
	colorHard     = color.RGBA{R: 220, G: 90, B: 0, A: 255}
	colorLost     = color.RGBA{R: 139, G: 0, B: 0, A: 255}
)

// stateColor shades the state label by how far the line has drifted
func stateColor(s lf.SteeringState) color.Color {
	switch s {
	case lf.Centered:
		return colorCentered
	case lf.SoftLeft, lf.SoftRight:
		return colorSoft
	case lf.HardLeft, lf.HardRight:
		return colorHard
	default:
		return colorLost
	}
}

func lampColor(on bool) color.Color {
	if on {
		return colorOnLine
	}
	return colorOffLine
}

// motorText formats a command like "Forward 7/90"
func motorText(side lf.Side, c lf.MotorCommand, period uint8) string {
	return side.String() + ": " + c.Direction.String() + " " + strconv.Itoa(int(c.Duty)) + "/" + strconv.Itoa(int(period))
}
