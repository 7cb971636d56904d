package domain

// SubjectKind enumerates the civic entity classes the engine scans.
type SubjectKind string

const (
	KindPerson       SubjectKind = "person"
	KindOrganization SubjectKind = "organization"
	KindMembership   SubjectKind = "membership"
	KindPost         SubjectKind = "post"
	KindBill         SubjectKind = "bill"
	KindVoteEvent    SubjectKind = "voteevent"
)

// Kinds returns every subject kind in scan order.
func Kinds() []SubjectKind {
	return []SubjectKind{KindPerson, KindOrganization, KindMembership, KindPost, KindBill, KindVoteEvent}
}

func (k SubjectKind) IsValid() bool {
	switch k {
	case KindPerson, KindOrganization, KindMembership, KindPost, KindBill, KindVoteEvent:
		return true
	}
	return false
}

func (k SubjectKind) String() string { return string(k) }

// SubjectRef points at one civic entity of any kind. The zero value means
// "no subject", used by issues keyed on an unmatched name instead.
type SubjectRef struct {
	Kind SubjectKind
	ID   string
}

func (r SubjectRef) IsZero() bool { return r.Kind == "" && r.ID == "" }

func PersonRef(id PersonID) SubjectRef {
	return SubjectRef{Kind: KindPerson, ID: string(id)}
}

func OrganizationRef(id OrganizationID) SubjectRef {
	return SubjectRef{Kind: KindOrganization, ID: string(id)}
}

func MembershipRef(id MembershipID) SubjectRef {
	return SubjectRef{Kind: KindMembership, ID: string(id)}
}

func PostRef(id PostID) SubjectRef {
	return SubjectRef{Kind: KindPost, ID: string(id)}
}

func BillRef(id BillID) SubjectRef {
	return SubjectRef{Kind: KindBill, ID: string(id)}
}

func VoteEventRef(id VoteEventID) SubjectRef {
	return SubjectRef{Kind: KindVoteEvent, ID: string(id)}
}
