package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Status is the moderation/lifecycle state shared by blogs and advertisement
// packages. Transitions are decided by the server; clients only request them.
type Status int

const (
	StatusPending  Status = 1
	StatusApproved Status = 2
	StatusRejected Status = 3
	StatusActive   Status = 4
	StatusInactive Status = 5
)

var statusNames = map[Status]string{
	StatusPending:  "Pending",
	StatusApproved: "Approved",
	StatusRejected: "Rejected",
	StatusActive:   "Active",
	StatusInactive: "Inactive",
}

// BlogStatuses lists the states a blog may be in.
var BlogStatuses = []Status{StatusPending, StatusApproved, StatusRejected}

// PackageStatuses lists the states an advertisement package may be in.
var PackageStatuses = []Status{StatusActive, StatusInactive}

// String returns the status name, or "Unknown".
func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "Unknown"
}

// Valid reports whether s is one of the allowed statuses.
func (s Status) Valid(allowed []Status) bool {
	for _, a := range allowed {
		if a == s {
			return true
		}
	}
	return false
}

// ParseStatus accepts either the numeric code or the status name.
func ParseStatus(v string) (Status, error) {
	if n, err := strconv.Atoi(v); err == nil {
		s := Status(n)
		if _, ok := statusNames[s]; ok {
			return s, nil
		}
		return 0, fmt.Errorf("unknown status %d", n)
	}
	for s, name := range statusNames {
		if name == v {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown status %q", v)
}

// MarshalJSON encodes the status by name.
func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes a status given either by name or by numeric code.
func (s *Status) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*s = Status(n)
		return nil
	}
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return fmt.Errorf("status must be a number or a name: %w", err)
	}
	parsed, err := ParseStatus(name)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
