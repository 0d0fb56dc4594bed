package frontend

import (
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/chewxy/math32"

	"github.com/itohio/gozeroii/pkg/cmath"
	"github.com/itohio/gozeroii/pkg/config"
	"github.com/itohio/gozeroii/pkg/reflection"
)

// Standard is what is attached to the simulated front-end's port.
type Standard int

const (
	StandardDUT Standard = iota
	StandardShort
	StandardOpen
	StandardLoad
)

func (s Standard) String() string {
	switch s {
	case StandardDUT:
		return "dut"
	case StandardShort:
		return "short"
	case StandardOpen:
		return "open"
	case StandardLoad:
		return "load"
	}
	return fmt.Sprintf("Standard(%d)", int(s))
}

// openImpedance is reported instead of an infinite impedance; a real
// front-end saturates at a large finite value.
const openImpedance = 1e6

// Mock simulates a front-end measuring a series-RLC antenna through an
// imperfect test fixture. The fixture follows the one-port error model
// m = e00 + e01e10*g / (1 - e11*g), so an SOL calibration against the
// simulated standards recovers the antenna's true reflection coefficient.
type Mock struct {
	cfg *config.MockConfig
	z0  float32

	mu        sync.Mutex
	connected bool
	standard  Standard
	rng       *rand.Rand
}

// NewMock creates a simulated front-end.
func NewMock(cfg *config.MockConfig, z0 float32) *Mock {
	if cfg == nil {
		def := config.Default().Mock
		cfg = &def
	}
	if z0 <= 0 {
		z0 = 50
	}

	return &Mock{
		cfg:      cfg,
		z0:       z0,
		standard: StandardDUT,
		rng:      rand.New(rand.NewPCG(1, 2)),
	}
}

// Connect simulates connecting to the device.
func (m *Mock) Connect() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.connected {
		return fmt.Errorf("already connected")
	}
	m.connected = true
	return nil
}

// Close stops the simulated device.
func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connected = false
	return nil
}

// IsConnected returns whether the device is currently connected.
func (m *Mock) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

// Attach selects what the simulated port is connected to.
func (m *Mock) Attach(s Standard) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.standard = s
}

// Attached returns the currently attached standard.
func (m *Mock) Attached() Standard {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.standard
}

// Antenna returns the simulated antenna impedance at fq.
// X = R*Q*(f/f0 - f0/f) for a series resonant circuit.
func (m *Mock) Antenna(fq uint32) complex64 {
	if fq == 0 {
		return complex(math32.Inf(1), 0)
	}
	f := float32(fq)
	f0 := float32(m.cfg.Resonance)
	r := m.cfg.Resistance
	return complex(r, r*m.cfg.Q*(f/f0-f0/f))
}

// Measure returns the raw impedance seen through the fixture.
func (m *Mock) Measure(fq uint32) (complex64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.connected {
		return 0, fmt.Errorf("not connected")
	}
	if m.cfg.Delay > 0 {
		time.Sleep(m.cfg.Delay)
	}

	var g complex64
	switch m.standard {
	case StandardShort:
		g = reflection.IdealShort
	case StandardOpen:
		g = reflection.IdealOpen
	case StandardLoad:
		g = reflection.IdealLoad
	default:
		if fq == 0 {
			g = reflection.IdealOpen
		} else {
			g = reflection.Gamma(m.Antenna(fq), m.z0)
		}
	}

	raw := m.fixture(g) + m.noise()
	z := reflection.Impedance(raw, m.z0)
	if !cmath.IsFinite(z) {
		z = complex(openImpedance, 0)
	}
	return z, nil
}

func (m *Mock) fixture(g complex64) complex64 {
	e00 := complex(m.cfg.Directivity[0], m.cfg.Directivity[1])
	e11 := complex(m.cfg.SourceMatch[0], m.cfg.SourceMatch[1])
	tracking := complex(m.cfg.Tracking[0], m.cfg.Tracking[1])
	return e00 + tracking*g/(1-e11*g)
}

func (m *Mock) noise() complex64 {
	if m.cfg.NoiseLevel == 0 {
		return 0
	}
	return cmath.Polar(m.cfg.NoiseLevel*m.rng.Float32(), 2*math32.Pi*m.rng.Float32())
}
