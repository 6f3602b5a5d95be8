package relay

import (
	"fmt"
	"regexp"
)

var machineIDPattern = regexp.MustCompile(`^[0-9]{3}-[A-Z]{3}$`)

// MachineID is a laundry machine code such as "123-ABC".
type MachineID string

// ParseMachineID validates s and returns it as a MachineID.
func ParseMachineID(s string) (MachineID, error) {
	if s == "" || !machineIDPattern.MatchString(s) {
		return "", fmt.Errorf("%w: %q", ErrInvalidFormat, s)
	}
	return MachineID(s), nil
}

func (id MachineID) String() string {
	return string(id)
}
