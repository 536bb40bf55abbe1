package resolver

import (
	"ditroboticstw/internal/auth"
)

// DefaultStaff are the Facebook ids of the organization's staff.
var DefaultStaff = []string{
	"100001734865203",
	"100000216427380",
	"100002473069119",
	"1377104649",
}

// StaffList grants the blogger capability to members of a fixed set of
// external ids. It is immutable after construction and safe for
// concurrent use.
type StaffList struct {
	members map[string]struct{}
}

// NewStaffList copies ids into a new allow-list. Empty ids are ignored.
func NewStaffList(ids []string) *StaffList {
	m := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		m[id] = struct{}{}
	}
	return &StaffList{members: m}
}

func (s *StaffList) Contains(externalID string) bool {
	_, ok := s.members[externalID]
	return ok
}

func (s *StaffList) Len() int {
	return len(s.members)
}

func (s *StaffList) Resolve(externalID string) auth.Capabilities {
	caps := auth.NewCapabilities()
	if externalID != "" && s.Contains(externalID) {
		caps.Add(auth.CapabilityBlogger)
	}
	return caps
}
