// Package domain holds identifier and reference types shared across the
// engine. Civic entity ids are opaque OCD id strings; typed wrappers keep
// a bill id from being passed where a person id is expected.
package domain

// JurisdictionID is an OCD jurisdiction id, e.g.
// "ocd-jurisdiction/country:us/state:nc/government".
type JurisdictionID string

func (id JurisdictionID) String() string { return string(id) }
func (id JurisdictionID) IsEmpty() bool  { return id == "" }

// PersonID is an OCD person id ("ocd-person/<uuid>").
type PersonID string

func (id PersonID) String() string { return string(id) }
func (id PersonID) IsEmpty() bool  { return id == "" }

// OrganizationID is an OCD organization id ("ocd-organization/<uuid>").
type OrganizationID string

func (id OrganizationID) String() string { return string(id) }
func (id OrganizationID) IsEmpty() bool  { return id == "" }

// MembershipID identifies a person-organization membership row.
type MembershipID string

func (id MembershipID) String() string { return string(id) }
func (id MembershipID) IsEmpty() bool  { return id == "" }

// PostID is an OCD post id ("ocd-post/<uuid>").
type PostID string

func (id PostID) String() string { return string(id) }
func (id PostID) IsEmpty() bool  { return id == "" }

// BillID is an OCD bill id ("ocd-bill/<uuid>").
type BillID string

func (id BillID) String() string { return string(id) }
func (id BillID) IsEmpty() bool  { return id == "" }

// VoteEventID is an OCD vote event id ("ocd-vote/<uuid>").
type VoteEventID string

func (id VoteEventID) String() string { return string(id) }
func (id VoteEventID) IsEmpty() bool  { return id == "" }
