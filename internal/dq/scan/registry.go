package scan

import (
	"civiq/internal/entity"
	"civiq/pkg/domain"
)

// Registry maps each subject kind to its scanner.
type Registry map[domain.SubjectKind]Scanner

// NewRegistry wires the full scanner set over one entity store.
func NewRegistry(entities entity.Store) Registry {
	scanners := []Scanner{
		NewPersonScanner(entities),
		NewOrganizationScanner(entities),
		NewMembershipScanner(entities),
		NewPostScanner(entities),
		NewBillScanner(entities),
		NewVoteEventScanner(entities),
	}
	reg := make(Registry, len(scanners))
	for _, s := range scanners {
		reg[s.Kind()] = s
	}
	return reg
}
