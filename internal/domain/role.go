package domain

import "fmt"

// Role is ordered by privilege: a higher value outranks a lower one.
type Role int

const (
	RoleParticipant Role = iota
	RoleModerator
	RoleCoHost
	RoleHost
)

var roleNames = [...]string{
	RoleParticipant: "PARTICIPANT",
	RoleModerator:   "MODERATOR",
	RoleCoHost:      "CO_HOST",
	RoleHost:        "HOST",
}

func (r Role) String() string {
	if r < RoleParticipant || r > RoleHost {
		return fmt.Sprintf("Role(%d)", int(r))
	}
	return roleNames[r]
}

func ParseRole(s string) (Role, error) {
	for i, n := range roleNames {
		if n == s {
			return Role(i), nil
		}
	}
	return RoleParticipant, fmt.Errorf("unknown role %q", s)
}

func (r Role) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

func (r *Role) UnmarshalText(b []byte) error {
	v, err := ParseRole(string(b))
	if err != nil {
		return err
	}
	*r = v
	return nil
}

// Outranks reports whether r is strictly more privileged than other.
func (r Role) Outranks(other Role) bool { return r > other }
