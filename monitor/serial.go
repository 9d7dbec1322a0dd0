package monitor

import (
	"errors"
	"fmt"

	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"
)

// SerialPortNone can be selected to run without a device
const SerialPortNone = "none"

// ErrNoUSBSerial is returned when no USB serial port is connected
var ErrNoUSBSerial = errors.New("no USB serial ports found")

// SerialPorts lists the USB serial ports
func SerialPorts() ([]string, error) {
	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, fmt.Errorf("error listing serial ports: %w", err)
	}

	var names []string
	for _, p := range ports {
		if p.IsUSB {
			names = append(names, p.Name)
		}
	}
	if len(names) == 0 {
		return nil, ErrNoUSBSerial
	}
	return names, nil
}

// OpenSerial opens the port the firmware is attached to. An empty name picks the first USB port
func OpenSerial(name string, baudRate int) (serial.Port, error) {
	if name == "" {
		ports, err := SerialPorts()
		if err != nil {
			return nil, err
		}
		name = ports[0]
	}

	port, err := serial.Open(name, &serial.Mode{BaudRate: baudRate})
	if err != nil {
		return nil, fmt.Errorf("error opening serial port %s: %w", name, err)
	}
	return port, nil
}
