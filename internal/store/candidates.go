package store

import (
	"context"
	"database/sql/driver"
	"fmt"
	"strconv"
	"strings"

	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/RuthEberhardt/clinical-filter/internal/family"
	"github.com/RuthEberhardt/clinical-filter/internal/trio"
)

// Candidate is one stored trio candidate row.
type Candidate struct {
	Proband      string
	Chrom        string
	Pos          int64
	Ref          string
	Alt          string
	Gene         string
	MutationID   string
	Consequence  string
	MaxAF        string
	TrioGenotype string
	PPDNM        string
	Kind         string
	Inheritance  string
	CNVLength    int64
	HasParents   bool
}

// candidateKey is the composite key for deduplicating rows before writing.
type candidateKey struct {
	proband, chrom, alt string
	pos                 int64
}

// WriteCandidates batch-inserts a family's accepted candidates using the
// Appender API. Duplicate (proband, chrom, pos, alt) entries are
// deduplicated before writing. populations names the INFO fields used
// for the stored max allele frequency.
func (s *Store) WriteCandidates(fam *family.Family, trios []*trio.TrioRecord, populations []string) error {
	if len(trios) == 0 {
		return nil
	}

	seen := make(map[candidateKey]bool, len(trios))
	var rows []Candidate
	for _, t := range trios {
		c := newCandidate(fam, t, populations)
		k := candidateKey{c.Proband, c.Chrom, c.Alt, c.Pos}
		if !seen[k] {
			seen[k] = true
			rows = append(rows, c)
		}
	}

	conn, err := s.db.Conn(context.Background())
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", "trio_candidates")
		return err
	}); err != nil {
		return fmt.Errorf("create appender: %w", err)
	}
	defer appender.Close()

	for _, c := range rows {
		if err := appender.AppendRow(
			c.Proband, c.Chrom, c.Pos, c.Ref, c.Alt,
			c.Gene, c.MutationID, c.Consequence, c.MaxAF,
			c.TrioGenotype, c.PPDNM, c.Kind, c.Inheritance,
			c.CNVLength, c.HasParents,
		); err != nil {
			return fmt.Errorf("append candidate: %w", err)
		}
	}

	return appender.Flush()
}

func newCandidate(fam *family.Family, t *trio.TrioRecord, populations []string) Candidate {
	child := t.Child

	maxAF := "NA"
	if af, ok := child.Info.MaxAlleleFrequency(populations); ok {
		maxAF = strconv.FormatFloat(af, 'g', -1, 64)
	}

	ppDNM := "NA"
	if v, ok := child.Format["PP_DNM"]; ok {
		ppDNM = v
	}

	kind, inheritance, cnvLength := "snv", "", int64(0)
	if child.IsCNV() {
		kind = "cnv"
		inheritance = string(child.Inheritance)
		start, end := child.Range()
		cnvLength = end - start
	}

	return Candidate{
		Proband:      fam.Child.ID,
		Chrom:        t.Chrom,
		Pos:          t.Pos,
		Ref:          child.Ref,
		Alt:          strings.Join(child.Alts, ","),
		Gene:         child.Gene(),
		MutationID:   child.MutationID(),
		Consequence:  child.Consequence(),
		MaxAF:        maxAF,
		TrioGenotype: trioGenotype(t),
		PPDNM:        ppDNM,
		Kind:         kind,
		Inheritance:  inheritance,
		CNVLength:    cnvLength,
		HasParents:   t.HasParents,
	}
}

func trioGenotype(t *trio.TrioRecord) string {
	mother, father := "NA", "NA"
	if t.Mother != nil {
		mother = strconv.Itoa(t.Mother.Genotype)
	}
	if t.Father != nil {
		father = strconv.Itoa(t.Father.Genotype)
	}
	return strconv.Itoa(t.Child.Genotype) + "/" + mother + "/" + father
}

// LookupSite queries stored candidates at a coordinate.
func (s *Store) LookupSite(chrom string, pos int64) ([]Candidate, error) {
	rows, err := s.db.Query(selectCandidates+" WHERE chrom=? AND pos=?", chrom, pos)
	if err != nil {
		return nil, fmt.Errorf("query site: %w", err)
	}
	defer rows.Close()

	return scanCandidates(rows)
}

// SearchByGene queries stored candidates for a gene symbol.
func (s *Store) SearchByGene(gene string) ([]Candidate, error) {
	rows, err := s.db.Query(selectCandidates+" WHERE gene=?", gene)
	if err != nil {
		return nil, fmt.Errorf("query by gene: %w", err)
	}
	defer rows.Close()

	return scanCandidates(rows)
}

// SearchByProband queries stored candidates for one proband.
func (s *Store) SearchByProband(probandID string) ([]Candidate, error) {
	rows, err := s.db.Query(selectCandidates+" WHERE proband=?", probandID)
	if err != nil {
		return nil, fmt.Errorf("query by proband: %w", err)
	}
	defer rows.Close()

	return scanCandidates(rows)
}

const selectCandidates = `SELECT
	proband, chrom, pos, ref, alt,
	gene, mutation_id, consequence, max_af,
	trio_genotype, pp_dnm, kind, inheritance,
	cnv_length, has_parents
	FROM trio_candidates`

// scanCandidates scans rows into Candidate slices.
func scanCandidates(rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}) ([]Candidate, error) {
	var results []Candidate
	for rows.Next() {
		var c Candidate
		if err := rows.Scan(
			&c.Proband, &c.Chrom, &c.Pos, &c.Ref, &c.Alt,
			&c.Gene, &c.MutationID, &c.Consequence, &c.MaxAF,
			&c.TrioGenotype, &c.PPDNM, &c.Kind, &c.Inheritance,
			&c.CNVLength, &c.HasParents,
		); err != nil {
			return nil, fmt.Errorf("scan candidate: %w", err)
		}
		results = append(results, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate candidates: %w", err)
	}
	return results, nil
}

// ClearCandidates removes all stored candidates.
func (s *Store) ClearCandidates() error {
	_, err := s.db.Exec("DELETE FROM trio_candidates")
	return err
}
