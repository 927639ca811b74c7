// Package inventory implements the dealership's vehicle record store: a CSV
// table loaded into memory, queried by VIN or availability, and persisted
// back on reservation.
package inventory

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/CarBotAI/carbot-mvp/engine/domain"
)

// Store is the in-memory inventory table backed by a CSV file. All methods
// are safe for concurrent use; reads copy out so callers never alias the
// table.
type Store struct {
	path   string
	log    *slog.Logger
	events *Events

	mu     sync.Mutex
	header []string
	cars   []domain.Car
	loaded bool
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the store's logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.log = l }
}

// WithEvents enables reservation event publishing.
func WithEvents(e *Events) Option {
	return func(s *Store) { s.events = e }
}

// New creates a Store for the CSV file at path. Call Load before querying.
func New(path string, opts ...Option) *Store {
	s := &Store{
		path: path,
		log:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load reads the CSV file into memory, replacing any previously loaded
// table. Rows that fail validation are skipped and logged; a header missing
// required columns fails the whole load.
func (s *Store) Load() error {
	f, err := os.Open(s.path)
	if err != nil {
		return fmt.Errorf("open inventory: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return fmt.Errorf("read inventory: %w", err)
	}
	if len(records) == 0 {
		return fmt.Errorf("read inventory: %w: empty file", domain.ErrMissingColumns)
	}

	header := make([]string, len(records[0]))
	cols := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		name = strings.ToLower(strings.TrimSpace(name))
		header[i] = name
		cols[name] = i
	}

	var missing []string
	for _, col := range RequiredColumns {
		if _, ok := cols[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("load %s: %w: %s", s.path, domain.ErrMissingColumns, strings.Join(missing, ", "))
	}
	if _, ok := cols[statusColumn]; !ok {
		header = append(header, statusColumn)
	}

	cars := make([]domain.Car, 0, len(records)-1)
	skipped := 0
	seen := make(map[string]int, len(records)-1)
	for i, record := range records[1:] {
		if len(record) != len(records[0]) {
			skipped++
			s.log.Warn("skipping row", "row", i+2,
				"error", fmt.Errorf("%d fields, header has %d", len(record), len(records[0])))
			continue
		}
		car, err := parseRow(cols, record, i)
		if err != nil {
			skipped++
			s.log.Warn("skipping row", "row", i+2, "error", err)
			continue
		}
		if first, dup := seen[car.VIN]; dup {
			s.log.Warn("duplicate vin", "vin", car.VIN, "row", i+2, "first_row", first)
		} else {
			seen[car.VIN] = i + 2
		}
		cars = append(cars, car)
	}

	s.mu.Lock()
	s.header = header
	s.cars = cars
	s.loaded = true
	s.mu.Unlock()

	s.log.Info("inventory loaded", "path", s.path, "vehicles", len(cars), "skipped", skipped)
	return nil
}

// Loaded reports whether Load has succeeded.
func (s *Store) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

// Len returns the number of loaded vehicles.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.cars)
}

// Cars returns a copy of every loaded vehicle.
func (s *Store) Cars() []domain.Car {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Car, len(s.cars))
	copy(out, s.cars)
	return out
}

// Active returns a copy of the vehicles currently offered for sale.
func (s *Store) Active() []domain.Car {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Car
	for _, c := range s.cars {
		if c.Available() {
			out = append(out, c)
		}
	}
	return out
}

// GetByVIN returns the vehicle with the given VIN.
func (s *Store) GetByVIN(vin string) (domain.Car, bool) {
	vin = strings.TrimSpace(vin)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.cars {
		if c.VIN == vin {
			return c, true
		}
	}
	return domain.Car{}, false
}

// Reserve transitions an Available vehicle to Reserved and persists the
// whole table. If persisting fails the in-memory state is rolled back.
func (s *Store) Reserve(ctx context.Context, vin string) error {
	car, err := s.setStatus(vin, domain.StatusReserved, true)
	if err != nil {
		return err
	}
	s.log.Info("vehicle reserved", "vin", car.VIN, "make", car.Make, "model", car.Model, "price", car.Price)
	if s.events != nil {
		s.events.PublishReserved(ctx, car)
	}
	return nil
}

// UpdateStatus sets a vehicle's status without the availability precondition
// and persists the table. Used to release reservations.
func (s *Store) UpdateStatus(ctx context.Context, vin string, status domain.Status) error {
	if !domain.ValidStatuses[status] {
		return fmt.Errorf("update status: %w: %q", domain.ErrInvalidStatus, status)
	}
	car, err := s.setStatus(vin, status, false)
	if err != nil {
		return err
	}
	s.log.Info("status updated", "vin", car.VIN, "status", car.Status)
	return nil
}

// setStatus performs the locked find-mutate-persist-rollback cycle shared by
// Reserve and UpdateStatus. Returns the updated car.
func (s *Store) setStatus(vin string, status domain.Status, requireAvailable bool) (domain.Car, error) {
	vin = strings.TrimSpace(vin)

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		return domain.Car{}, domain.ErrNotLoaded
	}

	idx := -1
	for i, c := range s.cars {
		if c.VIN == vin {
			idx = i
			break
		}
	}
	if idx == -1 {
		return domain.Car{}, fmt.Errorf("vin %s: %w", vin, domain.ErrVehicleNotFound)
	}
	if requireAvailable && !s.cars[idx].Available() {
		return domain.Car{}, fmt.Errorf("vin %s: %w", vin, domain.ErrNotAvailable)
	}

	prev := s.cars[idx].Status
	s.cars[idx].Status = status

	if err := s.persistLocked(); err != nil {
		s.cars[idx].Status = prev
		s.log.Error("persist failed, rolled back", "vin", vin, "error", err)
		return domain.Car{}, fmt.Errorf("persist inventory: %w", err)
	}
	return s.cars[idx], nil
}

// persistLocked rewrites the whole CSV file atomically. Must hold mu.
func (s *Store) persistLocked() error {
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".inventory-*.csv")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.Write(s.header); err != nil {
		tmp.Close()
		return err
	}
	record := make([]string, len(s.header))
	for _, c := range s.cars {
		for i, col := range s.header {
			record[i] = encodeField(c, col)
		}
		if err := w.Write(record); err != nil {
			tmp.Close()
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}
