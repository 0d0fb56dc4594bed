package frontend

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.bug.st/serial"
)

const (
	// DefaultBaudRate is the bridge MCU baud rate.
	DefaultBaudRate = 115200
	// DefaultTimeout bounds how long a single measurement may take.
	DefaultTimeout = 2 * time.Second

	maxLineLength = 64
)

// ErrTimeout is returned when the bridge does not answer in time.
var ErrTimeout = errors.New("measurement timed out")

// Port represents a serial port.
type Port struct {
	Name        string
	Description string
}

// port is the subset of serial.Port the driver uses.
type port interface {
	io.ReadWriteCloser
	SetReadTimeout(t time.Duration) error
}

type opener func(name string, mode *serial.Mode) (port, error)

func openSerial(name string, mode *serial.Mode) (port, error) {
	return serial.Open(name, mode)
}

// Serial drives a measurement bridge over a serial line.
//
// Protocol: the host sends "M <fq>\n"; the bridge answers "<fq>,<r>,<x>\n"
// where r and x are the measured resistance and reactance in ohms. Lines
// that do not parse, or answer a different frequency, are skipped.
type Serial struct {
	port     string
	baudRate int
	timeout  time.Duration
	open     opener
	log      *slog.Logger

	mu        sync.Mutex
	conn      port
	pending   []byte
	connected bool
}

// New creates a Serial front-end for the given port.
func New(portName string, baudRate int, timeout time.Duration, logger *slog.Logger) *Serial {
	if baudRate == 0 {
		baudRate = DefaultBaudRate
	}
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Serial{
		port:     portName,
		baudRate: baudRate,
		timeout:  timeout,
		open:     openSerial,
		log:      logger.With("component", "frontend"),
	}
}

// Ports returns a list of available serial ports.
func Ports() ([]Port, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}

	result := make([]Port, 0, len(ports))
	for _, name := range ports {
		result = append(result, Port{Name: name, Description: name})
	}
	return result, nil
}

// Connect opens the serial port.
func (d *Serial) Connect() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.connected {
		return fmt.Errorf("already connected")
	}

	conn, err := d.open(d.port, &serial.Mode{BaudRate: d.baudRate})
	if err != nil {
		return fmt.Errorf("failed to open serial port %s: %w", d.port, err)
	}
	if err := conn.SetReadTimeout(d.timeout / 10); err != nil {
		conn.Close()
		return fmt.Errorf("failed to set read timeout on %s: %w", d.port, err)
	}

	d.conn = conn
	d.pending = d.pending[:0]
	d.connected = true
	d.log.Info("connected", "port", d.port, "baud", d.baudRate)
	return nil
}

// Close closes the serial port.
func (d *Serial) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.connected {
		return nil
	}

	err := d.conn.Close()
	d.conn = nil
	d.connected = false
	if err != nil {
		return fmt.Errorf("failed to close serial port %s: %w", d.port, err)
	}
	return nil
}

// IsConnected returns whether the port is open.
func (d *Serial) IsConnected() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.connected
}

// Measure requests one measurement and waits for the matching reply.
func (d *Serial) Measure(fq uint32) (complex64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.connected {
		return 0, fmt.Errorf("not connected")
	}

	if _, err := fmt.Fprintf(d.conn, "M %d\n", fq); err != nil {
		return 0, fmt.Errorf("failed to send measure command: %w", err)
	}

	deadline := time.Now().Add(d.timeout)
	for {
		line, err := d.readLine(deadline)
		if err != nil {
			return 0, fmt.Errorf("measure %d Hz: %w", fq, err)
		}
		if line == "" {
			continue
		}

		gotFq, z, err := parseReply(line)
		if err != nil {
			d.log.Warn("skipping reply", "line", line, "err", err)
			continue
		}
		if gotFq != fq {
			d.log.Warn("skipping stale reply", "want", fq, "got", gotFq)
			continue
		}
		return z, nil
	}
}

// readLine returns the next newline-terminated line without the terminator.
func (d *Serial) readLine(deadline time.Time) (string, error) {
	var buf [32]byte
	for {
		if i := bytes.IndexByte(d.pending, '\n'); i >= 0 {
			line := strings.TrimSpace(string(d.pending[:i]))
			d.pending = append(d.pending[:0], d.pending[i+1:]...)
			return line, nil
		}
		if len(d.pending) > maxLineLength {
			d.pending = d.pending[:0]
			return "", fmt.Errorf("reply longer than %d bytes", maxLineLength)
		}
		if time.Now().After(deadline) {
			return "", ErrTimeout
		}

		n, err := d.conn.Read(buf[:])
		if err != nil {
			return "", fmt.Errorf("failed to read from serial port: %w", err)
		}
		d.pending = append(d.pending, buf[:n]...)
	}
}

// parseReply parses a bridge reply.
// Format: fq,resistance,reactance
// Example: 14074000,48.213,-3.750
func parseReply(line string) (uint32, complex64, error) {
	parts := strings.Split(line, ",")
	if len(parts) != 3 {
		return 0, 0, fmt.Errorf("invalid reply format: expected 3 comma-separated values, got %d", len(parts))
	}

	fq, err := strconv.ParseUint(strings.TrimSpace(parts[0]), 10, 32)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid frequency: %w", err)
	}

	r, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 32)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid resistance: %w", err)
	}

	x, err := strconv.ParseFloat(strings.TrimSpace(parts[2]), 32)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid reactance: %w", err)
	}

	return uint32(fq), complex(float32(r), float32(x)), nil
}
