package entity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"civiq/pkg/domain"
	"civiq/pkg/platform/sentinel"
	txcontext "civiq/pkg/platform/tx"
)

// PostgresStore reads the Open Civic Data relational schema directly.
// Table names follow the upstream opencivicdata Django apps.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresStore) Jurisdictions(ctx context.Context) ([]*Jurisdiction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name FROM opencivicdata_jurisdiction ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("query jurisdictions: %w", err)
	}
	defer rows.Close()

	var out []*Jurisdiction
	for rows.Next() {
		j := &Jurisdiction{}
		if err := rows.Scan(&j.ID, &j.Name); err != nil {
			return nil, fmt.Errorf("scan jurisdiction: %w", err)
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

func (s *PostgresStore) FindJurisdiction(ctx context.Context, token string) (*Jurisdiction, error) {
	j := &Jurisdiction{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name FROM opencivicdata_jurisdiction
		WHERE id = $1 OR id LIKE '%:' || $1 || '/%'
		LIMIT 1
	`, token).Scan(&j.ID, &j.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find jurisdiction: %w", err)
	}
	return j, nil
}

func (s *PostgresStore) PeopleByJurisdiction(ctx context.Context, jur domain.JurisdictionID) ([]*Person, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT p.id, p.name, p.image
		FROM opencivicdata_person p
		JOIN opencivicdata_membership m ON m.person_id = p.id
		JOIN opencivicdata_organization o ON o.id = m.organization_id
		WHERE o.jurisdiction_id = $1
		ORDER BY p.id
	`, string(jur))
	if err != nil {
		return nil, fmt.Errorf("query people: %w", err)
	}
	defer rows.Close()

	byID := make(map[domain.PersonID]*Person)
	var out []*Person
	for rows.Next() {
		p := &Person{}
		if err := rows.Scan(&p.ID, &p.Name, &p.Image); err != nil {
			return nil, fmt.Errorf("scan person: %w", err)
		}
		byID[p.ID] = p
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate people: %w", err)
	}
	if len(out) == 0 {
		return out, nil
	}

	contactRows, err := s.db.QueryContext(ctx, `
		SELECT cd.person_id, cd.type, cd.value, cd.note
		FROM opencivicdata_personcontactdetail cd
		WHERE cd.person_id IN (
			SELECT DISTINCT m.person_id
			FROM opencivicdata_membership m
			JOIN opencivicdata_organization o ON o.id = m.organization_id
			WHERE o.jurisdiction_id = $1 AND m.person_id IS NOT NULL
		)
	`, string(jur))
	if err != nil {
		return nil, fmt.Errorf("query contact details: %w", err)
	}
	defer contactRows.Close()

	for contactRows.Next() {
		var pid domain.PersonID
		var cd ContactDetail
		if err := contactRows.Scan(&pid, &cd.Type, &cd.Value, &cd.Note); err != nil {
			return nil, fmt.Errorf("scan contact detail: %w", err)
		}
		if p, ok := byID[pid]; ok {
			p.ContactDetails = append(p.ContactDetails, cd)
		}
	}
	return out, contactRows.Err()
}

func (s *PostgresStore) PersonByID(ctx context.Context, id domain.PersonID) (*Person, error) {
	p := &Person{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, image FROM opencivicdata_person WHERE id = $1
	`, string(id)).Scan(&p.ID, &p.Name, &p.Image)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query person: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT type, value, note FROM opencivicdata_personcontactdetail WHERE person_id = $1
	`, string(id))
	if err != nil {
		return nil, fmt.Errorf("query contact details: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var cd ContactDetail
		if err := rows.Scan(&cd.Type, &cd.Value, &cd.Note); err != nil {
			return nil, fmt.Errorf("scan contact detail: %w", err)
		}
		p.ContactDetails = append(p.ContactDetails, cd)
	}
	return p, rows.Err()
}

func (s *PostgresStore) OrganizationsByJurisdiction(ctx context.Context, jur domain.JurisdictionID) ([]*Organization, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT o.id, o.jurisdiction_id, o.name, o.classification,
		       (SELECT COUNT(*) FROM opencivicdata_membership m WHERE m.organization_id = o.id)
		FROM opencivicdata_organization o
		WHERE o.jurisdiction_id = $1
		ORDER BY o.id
	`, string(jur))
	if err != nil {
		return nil, fmt.Errorf("query organizations: %w", err)
	}
	defer rows.Close()

	var out []*Organization
	for rows.Next() {
		o := &Organization{}
		if err := rows.Scan(&o.ID, &o.JurisdictionID, &o.Name, &o.Classification, &o.MembershipCount); err != nil {
			return nil, fmt.Errorf("scan organization: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (s *PostgresStore) MembershipsByJurisdiction(ctx context.Context, jur domain.JurisdictionID) ([]*Membership, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT m.id, m.organization_id, COALESCE(m.post_id, ''), COALESCE(m.person_id, ''), m.person_name
		FROM opencivicdata_membership m
		JOIN opencivicdata_organization o ON o.id = m.organization_id
		WHERE o.jurisdiction_id = $1
		ORDER BY m.id
	`, string(jur))
	if err != nil {
		return nil, fmt.Errorf("query memberships: %w", err)
	}
	defer rows.Close()

	var out []*Membership
	for rows.Next() {
		m := &Membership{}
		if err := rows.Scan(&m.ID, &m.OrganizationID, &m.PostID, &m.PersonID, &m.PersonName); err != nil {
			return nil, fmt.Errorf("scan membership: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *PostgresStore) PostsByJurisdiction(ctx context.Context, jur domain.JurisdictionID) ([]*Post, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.id, p.organization_id, p.label, p.maximum_memberships,
		       (SELECT COUNT(*) FROM opencivicdata_membership m WHERE m.post_id = p.id)
		FROM opencivicdata_post p
		JOIN opencivicdata_organization o ON o.id = p.organization_id
		WHERE o.jurisdiction_id = $1
		ORDER BY p.id
	`, string(jur))
	if err != nil {
		return nil, fmt.Errorf("query posts: %w", err)
	}
	defer rows.Close()

	var out []*Post
	for rows.Next() {
		p := &Post{}
		if err := rows.Scan(&p.ID, &p.OrganizationID, &p.Label, &p.MaximumMemberships, &p.MembershipCount); err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *PostgresStore) BillsByJurisdiction(ctx context.Context, jur domain.JurisdictionID) ([]*Bill, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT b.id, ls.jurisdiction_id, b.identifier,
		       (SELECT COUNT(*) FROM opencivicdata_billaction a WHERE a.bill_id = b.id),
		       (SELECT COUNT(*) FROM opencivicdata_billversion v WHERE v.bill_id = b.id)
		FROM opencivicdata_bill b
		JOIN opencivicdata_legislativesession ls ON ls.id = b.legislative_session_id
		WHERE ls.jurisdiction_id = $1
		ORDER BY b.id
	`, string(jur))
	if err != nil {
		return nil, fmt.Errorf("query bills: %w", err)
	}
	defer rows.Close()

	byID := make(map[domain.BillID]*Bill)
	var out []*Bill
	for rows.Next() {
		b := &Bill{}
		if err := rows.Scan(&b.ID, &b.JurisdictionID, &b.Identifier, &b.ActionCount, &b.VersionCount); err != nil {
			return nil, fmt.Errorf("scan bill: %w", err)
		}
		byID[b.ID] = b
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bills: %w", err)
	}
	if len(out) == 0 {
		return out, nil
	}

	spRows, err := s.db.QueryContext(ctx, `
		SELECT sp.bill_id, sp.entity_type, sp.name, COALESCE(sp.person_id, ''), COALESCE(sp.organization_id, '')
		FROM opencivicdata_billsponsorship sp
		JOIN opencivicdata_bill b ON b.id = sp.bill_id
		JOIN opencivicdata_legislativesession ls ON ls.id = b.legislative_session_id
		WHERE ls.jurisdiction_id = $1
	`, string(jur))
	if err != nil {
		return nil, fmt.Errorf("query sponsorships: %w", err)
	}
	defer spRows.Close()

	for spRows.Next() {
		var billID domain.BillID
		var sp Sponsorship
		if err := spRows.Scan(&billID, &sp.EntityType, &sp.Name, &sp.PersonID, &sp.OrganizationID); err != nil {
			return nil, fmt.Errorf("scan sponsorship: %w", err)
		}
		if b, ok := byID[billID]; ok {
			b.Sponsorships = append(b.Sponsorships, sp)
		}
	}
	return out, spRows.Err()
}

func (s *PostgresStore) VoteEventsByJurisdiction(ctx context.Context, jur domain.JurisdictionID) ([]*VoteEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT v.id, ls.jurisdiction_id, COALESCE(v.bill_id, '')
		FROM opencivicdata_voteevent v
		JOIN opencivicdata_legislativesession ls ON ls.id = v.legislative_session_id
		WHERE ls.jurisdiction_id = $1
		ORDER BY v.id
	`, string(jur))
	if err != nil {
		return nil, fmt.Errorf("query vote events: %w", err)
	}
	defer rows.Close()

	byID := make(map[domain.VoteEventID]*VoteEvent)
	var out []*VoteEvent
	for rows.Next() {
		v := &VoteEvent{}
		if err := rows.Scan(&v.ID, &v.JurisdictionID, &v.BillID); err != nil {
			return nil, fmt.Errorf("scan vote event: %w", err)
		}
		byID[v.ID] = v
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate vote events: %w", err)
	}
	if len(out) == 0 {
		return out, nil
	}

	countRows, err := s.db.QueryContext(ctx, `
		SELECT vc.vote_event_id, vc.option, vc.value
		FROM opencivicdata_votecount vc
		JOIN opencivicdata_voteevent v ON v.id = vc.vote_event_id
		JOIN opencivicdata_legislativesession ls ON ls.id = v.legislative_session_id
		WHERE ls.jurisdiction_id = $1
	`, string(jur))
	if err != nil {
		return nil, fmt.Errorf("query vote counts: %w", err)
	}
	defer countRows.Close()
	for countRows.Next() {
		var veID domain.VoteEventID
		var vc VoteCount
		if err := countRows.Scan(&veID, &vc.Option, &vc.Value); err != nil {
			return nil, fmt.Errorf("scan vote count: %w", err)
		}
		if v, ok := byID[veID]; ok {
			v.Counts = append(v.Counts, vc)
		}
	}
	if err := countRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate vote counts: %w", err)
	}

	voteRows, err := s.db.QueryContext(ctx, `
		SELECT pv.vote_event_id, pv.option, COALESCE(pv.voter_id, ''), pv.voter_name
		FROM opencivicdata_personvote pv
		JOIN opencivicdata_voteevent v ON v.id = pv.vote_event_id
		JOIN opencivicdata_legislativesession ls ON ls.id = v.legislative_session_id
		WHERE ls.jurisdiction_id = $1
	`, string(jur))
	if err != nil {
		return nil, fmt.Errorf("query ballots: %w", err)
	}
	defer voteRows.Close()
	for voteRows.Next() {
		var veID domain.VoteEventID
		var pv PersonVote
		if err := voteRows.Scan(&veID, &pv.Option, &pv.VoterID, &pv.VoterName); err != nil {
			return nil, fmt.Errorf("scan ballot: %w", err)
		}
		if v, ok := byID[veID]; ok {
			v.Votes = append(v.Votes, pv)
		}
	}
	return out, voteRows.Err()
}

func (s *PostgresStore) UpdatePersonName(ctx context.Context, id domain.PersonID, name string) error {
	res, err := s.execer(ctx).ExecContext(ctx, `
		UPDATE opencivicdata_person SET name = $2 WHERE id = $1
	`, string(id), name)
	if err != nil {
		return fmt.Errorf("update person name: %w", err)
	}
	return requireRow(res)
}

func (s *PostgresStore) UpdatePersonImage(ctx context.Context, id domain.PersonID, image string) error {
	res, err := s.execer(ctx).ExecContext(ctx, `
		UPDATE opencivicdata_person SET image = $2 WHERE id = $1
	`, string(id), image)
	if err != nil {
		return fmt.Errorf("update person image: %w", err)
	}
	return requireRow(res)
}

func (s *PostgresStore) UpdateContactValue(ctx context.Context, id domain.PersonID, ctype ContactType, oldValue, newValue, note string) error {
	res, err := s.execer(ctx).ExecContext(ctx, `
		UPDATE opencivicdata_personcontactdetail
		SET value = $4, note = CASE WHEN $5 = '' THEN note ELSE $5 END
		WHERE person_id = $1 AND type = $2 AND value = $3
	`, string(id), string(ctype), oldValue, newValue, note)
	if err != nil {
		return fmt.Errorf("update contact detail: %w", err)
	}
	return requireRow(res)
}

func (s *PostgresStore) CreateContact(ctx context.Context, id domain.PersonID, ctype ContactType, value, note string) error {
	_, err := s.execer(ctx).ExecContext(ctx, `
		INSERT INTO opencivicdata_personcontactdetail (person_id, type, value, note, label)
		VALUES ($1, $2, $3, $4, '')
	`, string(id), string(ctype), value, note)
	if err != nil {
		return fmt.Errorf("insert contact detail: %w", err)
	}
	return nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
