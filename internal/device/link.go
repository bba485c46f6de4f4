// Package device runs the controller against real hardware over a serial
// line: the device reports one measurement per line and receives one output
// per line in reply.
package device

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.bug.st/serial"
)

const DefaultBaudRate = 115200

// ErrMalformed indicates a line that carries no measurement.
var ErrMalformed = errors.New("device: malformed measurement")

// Link is a line-oriented measurement/output exchange.
type Link struct {
	rw     io.ReadWriter
	closer io.Closer
	r      *bufio.Reader
}

// NewLink wraps any stream. If rw is also an io.Closer, Close closes it.
func NewLink(rw io.ReadWriter) *Link {
	l := &Link{rw: rw, r: bufio.NewReader(rw)}
	if c, ok := rw.(io.Closer); ok {
		l.closer = c
	}
	return l
}

// Open opens a serial port in 8N1 mode. A zero baud selects DefaultBaudRate.
func Open(port string, baud int) (*Link, error) {
	if baud == 0 {
		baud = DefaultBaudRate
	}
	p, err := serial.Open(port, &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", port, err)
	}
	return NewLink(p), nil
}

// Ports lists the serial ports present on the system.
func Ports() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}
	return ports, nil
}

// ReadMeasurement blocks for the next line. Lines are either a bare decimal
// or "m=<decimal>"; anything else yields ErrMalformed and the line is
// consumed. A final line without a newline is still returned before io.EOF.
func (l *Link) ReadMeasurement() (float64, error) {
	line, err := l.r.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		return 0, err
	}
	return ParseMeasurement(line)
}

// ParseMeasurement decodes one protocol line.
func ParseMeasurement(line string) (float64, error) {
	s := strings.TrimSpace(line)
	if k, v, ok := strings.Cut(s, "="); ok {
		if strings.TrimSpace(k) != "m" {
			return 0, fmt.Errorf("%w: %q", ErrMalformed, s)
		}
		s = strings.TrimSpace(v)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformed, s)
	}
	return v, nil
}

// WriteOutput sends one output line.
func (l *Link) WriteOutput(u float64) error {
	_, err := fmt.Fprintf(l.rw, "%.4f\n", u)
	return err
}

func (l *Link) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}
