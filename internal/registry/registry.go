// Package registry stores the two registered phone numbers in a fixed
// 40-byte non-volatile image.
//
// Layout: byte 0 holds the length of Slot0 (0 = empty) followed by up to 19
// digit bytes; byte 20 holds the length of Slot1 followed by its digits.
package registry

import (
	"errors"
	"fmt"
	"io"
	"sync"
)

// Slot identifies one of the two storage locations.
type Slot int

const (
	Slot0 Slot = 0
	Slot1 Slot = 1
)

// Slots lists every slot in dial order.
var Slots = []Slot{Slot0, Slot1}

func (s Slot) String() string {
	return fmt.Sprintf("slot%d", int(s))
}

const (
	// SlotSize is the number of bytes reserved per slot (length byte + digits).
	SlotSize = 20

	// MaxDigits is the longest number a slot can hold.
	MaxDigits = SlotSize - 1

	// ImageSize is the size of the whole persisted image.
	ImageSize = SlotSize * 2
)

var (
	ErrTooLong     = errors.New("registry: number too long")
	ErrEmpty       = errors.New("registry: empty number")
	ErrCorrupt     = errors.New("registry: stored length out of range")
	ErrInvalidSlot = errors.New("registry: invalid slot")
)

// Medium is the byte-addressable backing store.
type Medium interface {
	io.ReaderAt
	io.WriterAt
}

// Entry is a point-in-time view of one slot.
type Entry struct {
	Slot     Slot
	Occupied bool
	Number   string
}

// Store is the two-slot phone number registry. Safe for concurrent use.
type Store struct {
	mu sync.Mutex
	m  Medium
}

// New creates a Store over the given medium.
func New(m Medium) *Store {
	return &Store{m: m}
}

func offset(slot Slot) (int64, error) {
	switch slot {
	case Slot0, Slot1:
		return int64(slot) * SlotSize, nil
	}
	return 0, fmt.Errorf("%w: %d", ErrInvalidSlot, int(slot))
}

// IsOccupied reports whether the slot's length byte is non-zero.
func (s *Store) IsOccupied(slot Slot) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, err := s.length(slot)
	if err != nil {
		return false, err
	}
	return n != 0, nil
}

// AnyOccupied reports whether at least one slot holds a number.
func (s *Store) AnyOccupied() (bool, error) {
	for _, slot := range Slots {
		ok, err := s.IsOccupied(slot)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// Read returns the number stored in slot. An unoccupied slot reads as "";
// callers that care must check IsOccupied first.
func (s *Store) Read(slot Slot) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read(slot)
}

// Write stores number in slot, replacing whatever was there.
// Numbers longer than MaxDigits are rejected and the slot is left unchanged.
func (s *Store) Write(slot Slot, number string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(slot, number)
}

// Clear zeroes the length byte and the occupied digit range of slot.
func (s *Store) Clear(slot Slot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	off, err := offset(slot)
	if err != nil {
		return err
	}
	n, err := s.length(slot)
	if err != nil {
		return err
	}
	if n > MaxDigits {
		n = MaxDigits
	}
	if _, err := s.m.WriteAt(make([]byte, n+1), off); err != nil {
		return fmt.Errorf("registry: clear %s: %w", slot, err)
	}
	return nil
}

// Register stores a new number according to the slot policy: Slot0 when it
// is free, otherwise Slot1, overwriting any number already there.
func (s *Store) Register(number string) (Slot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := validate(number); err != nil {
		return 0, err
	}
	n, err := s.length(Slot0)
	if err != nil {
		return 0, err
	}
	slot := Slot1
	if n == 0 {
		slot = Slot0
	}
	if err := s.write(slot, number); err != nil {
		return 0, err
	}
	return slot, nil
}

// Snapshot returns both slots.
func (s *Store) Snapshot() ([2]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out [2]Entry
	for i, slot := range Slots {
		num, err := s.read(slot)
		if err != nil {
			return out, err
		}
		out[i] = Entry{Slot: slot, Occupied: num != "", Number: num}
	}
	return out, nil
}

func (s *Store) length(slot Slot) (int, error) {
	off, err := offset(slot)
	if err != nil {
		return 0, err
	}
	var b [1]byte
	if _, err := s.m.ReadAt(b[:], off); err != nil {
		return 0, fmt.Errorf("registry: read %s length: %w", slot, err)
	}
	return int(b[0]), nil
}

func (s *Store) read(slot Slot) (string, error) {
	off, err := offset(slot)
	if err != nil {
		return "", err
	}
	n, err := s.length(slot)
	if err != nil {
		return "", err
	}
	if n == 0 {
		return "", nil
	}
	if n > MaxDigits {
		return "", fmt.Errorf("%w: %s holds %d", ErrCorrupt, slot, n)
	}
	buf := make([]byte, n)
	if _, err := s.m.ReadAt(buf, off+1); err != nil {
		return "", fmt.Errorf("registry: read %s: %w", slot, err)
	}
	return string(buf), nil
}

func (s *Store) write(slot Slot, number string) error {
	off, err := offset(slot)
	if err != nil {
		return err
	}
	if err := validate(number); err != nil {
		return err
	}
	// Length and digits go out in one write; trailing bytes of a longer
	// previous number are zeroed so the slot never carries stale digits.
	buf := make([]byte, SlotSize)
	buf[0] = byte(len(number))
	copy(buf[1:], number)
	if _, err := s.m.WriteAt(buf, off); err != nil {
		return fmt.Errorf("registry: write %s: %w", slot, err)
	}
	return nil
}

func validate(number string) error {
	if number == "" {
		return ErrEmpty
	}
	if len(number) > MaxDigits {
		return fmt.Errorf("%w: %d bytes, max %d", ErrTooLong, len(number), MaxDigits)
	}
	return nil
}
