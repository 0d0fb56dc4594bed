package persistence

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/itohio/gozeroii/pkg/calibration"
	"github.com/itohio/gozeroii/pkg/metrics"
	"github.com/itohio/gozeroii/pkg/sweep"
)

const (
	// DefaultRoot is the store directory used when none is configured.
	DefaultRoot = "zeroii-analyzer"

	settingsDir = "settings"
	resultsDir  = "results"
	tempPrefix  = ".tmp-"
	readBatch   = 32
)

// ErrNotFound is returned when no versioned file exists to load.
var ErrNotFound = errors.New("no saved file")

// Store keeps settings and results documents in two sub-directories of a
// root directory.
type Store struct {
	root     string
	settings string
	results  string
	log      *slog.Logger
	metrics  *metrics.Metrics
}

// Open prepares the directory layout under root, creating what is missing.
// metrics may be nil.
func Open(root string, logger *slog.Logger, mt *metrics.Metrics) (*Store, error) {
	if root == "" {
		root = DefaultRoot
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Store{
		root:     root,
		settings: filepath.Join(root, settingsDir),
		results:  filepath.Join(root, resultsDir),
		log:      logger.With("component", "persistence"),
		metrics:  mt,
	}
	for _, dir := range []string{root, s.settings, s.results} {
		if err := ensureDir(dir); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func ensureDir(dir string) error {
	fi, err := os.Stat(dir)
	switch {
	case errors.Is(err, os.ErrNotExist):
		if err := os.Mkdir(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
		return nil
	case err != nil:
		return fmt.Errorf("failed to stat %s: %w", dir, err)
	case !fi.IsDir():
		return fmt.Errorf("%s exists, but is not a directory", dir)
	}
	return nil
}

// Root returns the store directory.
func (s *Store) Root() string { return s.root }

// SaveSettings writes t as name in the settings directory.
func (s *Store) SaveSettings(name string, t *calibration.Table) error {
	err := s.write(s.settings, name, func(w io.Writer) error {
		return EncodeSettings(w, t)
	})
	s.metrics.StorageOp("save", err)
	if err != nil {
		return err
	}
	s.log.Info("settings saved", "name", name, "points", t.Len(), "z0", t.Z0())
	return nil
}

// SaveSettingsAuto writes t under the next versioned settings name and
// returns that name.
func (s *Store) SaveSettingsAuto(t *calibration.Table) (string, error) {
	name, err := s.next(s.settings, SettingsPrefix)
	if err != nil {
		return "", err
	}
	return name, s.SaveSettings(name, t)
}

// LoadSettings reads name from the settings directory into t and returns
// the number of points loaded. t is unchanged on error.
func (s *Store) LoadSettings(name string, t *calibration.Table) (int, error) {
	n, err := s.read(s.settings, name, "settings", func(r io.Reader) (int, error) {
		return DecodeSettings(r, t)
	})
	if err != nil {
		return 0, err
	}
	s.log.Info("settings loaded", "name", name, "points", n, "z0", t.Z0())
	return n, nil
}

// LoadLatestSettings loads the highest versioned settings file.
func (s *Store) LoadLatestSettings(t *calibration.Table) (string, int, error) {
	name, err := s.latest(s.settings, SettingsPrefix)
	if err != nil {
		return "", 0, err
	}
	n, err := s.LoadSettings(name, t)
	return name, n, err
}

// SaveResults writes points as name in the results directory.
func (s *Store) SaveResults(name string, points []sweep.Point) error {
	err := s.write(s.results, name, func(w io.Writer) error {
		return EncodeResults(w, points)
	})
	s.metrics.StorageOp("save", err)
	if err != nil {
		return err
	}
	s.log.Info("results saved", "name", name, "points", len(points))
	return nil
}

// SaveResultsAuto writes points under the next versioned results name and
// returns that name.
func (s *Store) SaveResultsAuto(points []sweep.Point) (string, error) {
	name, err := s.next(s.results, ResultsPrefix)
	if err != nil {
		return "", err
	}
	return name, s.SaveResults(name, points)
}

// LoadResults reads name from the results directory into res and returns
// the number of points loaded. res is unchanged on error.
func (s *Store) LoadResults(name string, res *sweep.Results) (int, error) {
	n, err := s.read(s.results, name, "results", func(r io.Reader) (int, error) {
		return DecodeResults(r, res)
	})
	if err != nil {
		return 0, err
	}
	s.log.Info("results loaded", "name", name, "points", n)
	return n, nil
}

// LoadLatestResults loads the highest versioned results file.
func (s *Store) LoadLatestResults(res *sweep.Results) (string, int, error) {
	name, err := s.latest(s.results, ResultsPrefix)
	if err != nil {
		return "", 0, err
	}
	n, err := s.LoadResults(name, res)
	return name, n, err
}

// ListSettings returns the settings file names in lexical order.
func (s *Store) ListSettings() ([]string, error) { return list(s.settings) }

// ListResults returns the results file names in lexical order.
func (s *Store) ListResults() ([]string, error) { return list(s.results) }

func list(dir string) ([]string, error) {
	var out []string
	for name, err := range entries(dir) {
		if err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	slices.Sort(out)
	return out, nil
}

func (s *Store) next(dir, prefix string) (string, error) {
	var name string
	err := scan(dir, func(names iter.Seq[string]) {
		name = NextName(names, prefix)
	})
	return name, err
}

func (s *Store) latest(dir, prefix string) (string, error) {
	var (
		name string
		ok   bool
	)
	err := scan(dir, func(names iter.Seq[string]) {
		name, _, ok = Latest(names, prefix)
	})
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("%w: %s%s", ErrNotFound, prefix, "*")
	}
	return name, nil
}

// scan hands fn a single pass over the file names in dir.
func scan(dir string, fn func(iter.Seq[string])) error {
	var scanErr error
	fn(func(yield func(string) bool) {
		for name, err := range entries(dir) {
			if err != nil {
				scanErr = err
				return
			}
			if !yield(name) {
				return
			}
		}
	})
	return scanErr
}

// entries yields the regular file names in dir, reading the directory in
// batches. Temporary files are skipped.
func entries(dir string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		f, err := os.Open(dir)
		if err != nil {
			yield("", fmt.Errorf("failed to open %s: %w", dir, err))
			return
		}
		defer f.Close()

		for {
			batch, err := f.ReadDir(readBatch)
			for _, e := range batch {
				if !e.Type().IsRegular() || strings.HasPrefix(e.Name(), tempPrefix) {
					continue
				}
				if !yield(e.Name(), nil) {
					return
				}
			}
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield("", fmt.Errorf("failed to list %s: %w", dir, err))
				return
			}
		}
	}
}

func validName(name string) error {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return fmt.Errorf("invalid file name %q", name)
	}
	return nil
}

// write encodes into a temporary file and renames it to name once complete.
func (s *Store) write(dir, name string, encode func(io.Writer) error) error {
	if err := validName(name); err != nil {
		return err
	}

	f, err := os.CreateTemp(dir, tempPrefix+"*")
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", name, err)
	}
	tmp := f.Name()
	defer os.Remove(tmp)

	w := bufio.NewWriterSize(f, 512)
	if err := encode(w); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode %s: %w", name, err)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := os.Rename(tmp, filepath.Join(dir, name)); err != nil {
		return fmt.Errorf("failed to save %s: %w", name, err)
	}
	return nil
}

func (s *Store) read(dir, name, document string, decode func(io.Reader) (int, error)) (int, error) {
	if err := validName(name); err != nil {
		return 0, err
	}

	f, err := os.Open(filepath.Join(dir, name))
	if err != nil {
		s.metrics.StorageOp("load", err)
		return 0, fmt.Errorf("failed to open %s: %w", name, err)
	}
	defer f.Close()

	n, err := decode(f)
	s.metrics.StorageOp("load", err)
	if err != nil {
		s.metrics.DecodeFailed(document)
		s.log.Warn("rejected document", "name", name, "err", err)
		return 0, fmt.Errorf("failed to decode %s: %w", name, err)
	}
	return n, nil
}
