package pwm

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
)

// SysfsSink drives one channel of a kernel PWM chip through sysfs.
type SysfsSink struct {
	dir      string
	periodNs uint64

	level   uint8
	written bool
}

// OpenSysfs exports channel of pwmchip<chip> under root if needed, sets the
// period, and enables the channel with a zero duty cycle.
func OpenSysfs(root string, chip, channel int, periodNs uint64) (*SysfsSink, error) {
	chipDir := filepath.Join(root, fmt.Sprintf("pwmchip%d", chip))
	dir := filepath.Join(chipDir, fmt.Sprintf("pwm%d", channel))

	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		if err := writeAttr(chipDir, "export", strconv.Itoa(channel)); err != nil {
			return nil, err
		}
	}

	s := &SysfsSink{dir: dir, periodNs: periodNs}
	// duty_cycle must not exceed period, so clear it first
	if err := writeAttr(dir, "duty_cycle", "0"); err != nil {
		return nil, err
	}
	if err := writeAttr(dir, "period", strconv.FormatUint(periodNs, 10)); err != nil {
		return nil, err
	}
	if err := writeAttr(dir, "enable", "1"); err != nil {
		return nil, err
	}
	s.written = true
	return s, nil
}

// SetLevel updates the duty cycle. Repeated calls with the same level do not
// touch sysfs.
func (s *SysfsSink) SetLevel(level uint8) error {
	if s.written && level == s.level {
		return nil
	}
	if err := writeAttr(s.dir, "duty_cycle", strconv.FormatUint(s.duty(level), 10)); err != nil {
		return err
	}
	s.level = level
	s.written = true
	return nil
}

func (s *SysfsSink) duty(level uint8) uint64 {
	return s.periodNs * uint64(level) / 255
}

// Close sets the duty cycle to zero and disables the channel.
func (s *SysfsSink) Close() error {
	var errs []error
	if err := writeAttr(s.dir, "duty_cycle", "0"); err != nil {
		errs = append(errs, err)
	}
	if err := writeAttr(s.dir, "enable", "0"); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func writeAttr(dir, name, value string) error {
	if err := os.WriteFile(filepath.Join(dir, name), []byte(value), 0o644); err != nil {
		return fmt.Errorf("pwm: write %s: %w", name, err)
	}
	return nil
}
