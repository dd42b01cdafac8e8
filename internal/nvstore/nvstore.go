// Package nvstore provides the byte-addressable non-volatile store that holds
// the committed power flag and level.
package nvstore

import (
	"errors"
	"fmt"

	"github.com/sweeney/ir-dimmer/internal/logic"
)

// Fixed cell addresses.
const (
	AddrPower       uint16 = 0
	AddrLevel       uint16 = 1
	AddrLevelMarker uint16 = 2 // programmed once level has been written; 0xff is a valid level
)

// Erased is the value of a cell that has never been written.
const Erased byte = 0xff

// Size is the number of cells in a store image.
const Size = 512

// ErrAddressRange is returned for an address outside the store.
var ErrAddressRange = errors.New("nvstore: address out of range")

// Store reads and writes single cells.
type Store interface {
	ReadCell(addr uint16) (byte, error)
	WriteCell(addr uint16, v byte) error
}

// Address returns the cell holding field.
func Address(f logic.Field) (uint16, bool) {
	switch f {
	case logic.FieldPower:
		return AddrPower, true
	case logic.FieldLevel:
		return AddrLevel, true
	}
	return 0, false
}

// Commit writes one scheduler commit to its cell.
func Commit(s Store, c logic.Commit) error {
	addr, ok := Address(c.Field)
	if !ok {
		return fmt.Errorf("commit: unknown field %q", c.Field)
	}
	if err := s.WriteCell(addr, c.Value); err != nil {
		return fmt.Errorf("commit %s: %w", c.Field, err)
	}
	return nil
}

// Restore reads the committed state. Erased cells are replaced with the
// first-boot defaults (power on, level MinLevel), which are written back at
// once so later boots read programmed values. On a read error the defaults
// are returned together with the error.
func Restore(s Store) (logic.DeviceState, error) {
	state := logic.DeviceState{Power: true, Level: logic.MinLevel}

	power, err := s.ReadCell(AddrPower)
	if err != nil {
		return state, fmt.Errorf("read power: %w", err)
	}
	level, err := s.ReadCell(AddrLevel)
	if err != nil {
		return state, fmt.Errorf("read level: %w", err)
	}
	marker, err := s.ReadCell(AddrLevelMarker)
	if err != nil {
		return state, fmt.Errorf("read level marker: %w", err)
	}

	var errs []error

	if power == Erased {
		if err := s.WriteCell(AddrPower, 1); err != nil {
			errs = append(errs, fmt.Errorf("write default power: %w", err))
		}
	} else {
		state.Power = power != 0
	}

	if marker == Erased {
		// Level cell predates the marker only if it was ever programmed
		if level != Erased {
			state.Level = level
		} else if err := s.WriteCell(AddrLevel, state.Level); err != nil {
			errs = append(errs, fmt.Errorf("write default level: %w", err))
		}
		if err := s.WriteCell(AddrLevelMarker, 1); err != nil {
			errs = append(errs, fmt.Errorf("write level marker: %w", err))
		}
	} else {
		state.Level = level
	}

	return state, errors.Join(errs...)
}
