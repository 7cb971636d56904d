package scan

import (
	"context"

	"civiq/internal/entity"
	"civiq/pkg/domain"
)

// VoteEventScanner detects vote events with no bill, no ballots, zeroed
// tallies, or declared tallies that disagree with the recorded ballots.
type VoteEventScanner struct {
	entities entity.Store
}

func NewVoteEventScanner(entities entity.Store) *VoteEventScanner {
	return &VoteEventScanner{entities: entities}
}

func (s *VoteEventScanner) Kind() domain.SubjectKind { return domain.KindVoteEvent }

func (s *VoteEventScanner) Scan(ctx context.Context, jur domain.JurisdictionID, slug string) (*Finding, error) {
	events, err := s.entities.VoteEventsByJurisdiction(ctx, jur)
	if err != nil {
		return nil, err
	}

	finding := &Finding{Slug: slug}
	switch slug {
	case "missing-bill":
		for _, v := range events {
			if v.BillID == "" {
				finding.Subjects = append(finding.Subjects, domain.VoteEventRef(v.ID))
			}
		}
	case "missing-voters":
		for _, v := range events {
			if len(v.Votes) == 0 {
				finding.Subjects = append(finding.Subjects, domain.VoteEventRef(v.ID))
			}
		}
	case "missing-counts":
		// A 0-0 declared yes/no pair is treated as "counts never recorded",
		// whether or not ballots exist. This cannot tell a genuine 0-0
		// procedural tally apart from absent data; kept as-is pending
		// product clarification.
		for _, v := range events {
			yes, yesOK := v.DeclaredCount(entity.OptionYes)
			no, noOK := v.DeclaredCount(entity.OptionNo)
			if yesOK && noOK && yes == 0 && no == 0 {
				finding.Subjects = append(finding.Subjects, domain.VoteEventRef(v.ID))
			}
		}
	case "bad-counts":
		// Compare each declared tally against the ballots recorded with that
		// option. A declared 0 with zero ballots agrees and is not bad; that
		// case belongs to missing-counts.
		for _, v := range events {
			for _, option := range []entity.VoteOption{entity.OptionYes, entity.OptionNo, entity.OptionOther} {
				declared, ok := v.DeclaredCount(option)
				if ok && declared != v.BallotCount(option) {
					finding.Subjects = append(finding.Subjects, domain.VoteEventRef(v.ID))
					break
				}
			}
		}
	case "unmatched-voter":
		var names []string
		for _, v := range events {
			for _, ballot := range v.Votes {
				if ballot.VoterID.IsEmpty() {
					names = append(names, ballot.VoterName)
				}
			}
		}
		finding.Names = groupNames(names)
	default:
		return nil, unknownSlug(domain.KindVoteEvent, slug)
	}
	return finding, nil
}
