// Package vcf parses tokenized genomic variant records for trio filtering.
package vcf

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/RuthEberhardt/clinical-filter/internal/family"
)

// Kind discriminates point variants from copy-number calls. The two kinds
// differ in how they match across individuals and how default parental
// records are synthesised.
type Kind int

// The closed set of variant kinds.
const (
	KindSNV Kind = iota
	KindCNV
)

// Inheritance classifies a copy-number variant against the parental calls.
type Inheritance string

// Inheritance classes carried by CNV records.
const (
	InheritancePaternal   Inheritance = "paternal"
	InheritanceMaternal   Inheritance = "maternal"
	InheritanceBiparental Inheritance = "biparental"
	InheritanceUnknown    Inheritance = "unknown"
)

// ErrImpossibleGenotype marks a genotype that cannot exist, such as a
// heterozygous call on the non-pseudoautosomal X in a male. Loaders skip
// the record rather than aborting the scan.
var ErrImpossibleGenotype = errors.New("impossible genotype")

// RefAllele is the symbolic allele used for reference-like CNV calls.
const RefAllele = "<REF>"

// Pseudoautosomal regions on the X chromosome (GRCh37), where males are
// diploid and heterozygous calls are legitimate.
var pseudoautosomal = [][2]int64{
	{60001, 2699520},
	{154930290, 155260560},
}

// Key identifies a variant call for matching across family members.
// CNV keys additionally carry the allele set, so copy-number calls never
// match by coordinate alone.
type Key struct {
	Chrom string
	Pos   int64
	Alts  string // symbolic allele set; empty for point variants
}

// LineKey derives the matching key from a tokenized line without
// constructing a full record. Used for the O(1) parental membership test.
func LineKey(fields []string) (Key, error) {
	if len(fields) < 8 {
		return Key{}, fmt.Errorf("expected at least 8 columns, found %d", len(fields))
	}
	pos, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return Key{}, fmt.Errorf("invalid position: %s", fields[1])
	}
	key := Key{Chrom: fields[0], Pos: pos}
	if isSymbolic(fields[4]) {
		key.Alts = fields[4]
	}
	return key, nil
}

// Record is one variant call for one individual.
type Record struct {
	Chrom  string
	Pos    int64
	ID     string
	Ref    string
	Alts   []string
	Qual   string
	Filter string
	Info   Info
	Format map[string]string

	Kind     Kind
	Sex      family.Sex
	Genotype int    // alt allele dosage: 0 hom ref, 1 het, 2 hom alt
	MNVCode  string // co-occurrence code injected from the MNV lookup

	// CNV only
	End         int64
	Inheritance Inheritance

	// Line preserves the raw tokens for VCF export.
	Line []string
}

// NewRecord builds a Record from a tokenized VCF line for an individual
// of the given sex. Returns ErrImpossibleGenotype for calls that cannot
// be represented.
func NewRecord(fields []string, sex family.Sex, cfg *Config) (*Record, error) {
	if len(fields) < 8 {
		return nil, fmt.Errorf("expected at least 8 columns, found %d", len(fields))
	}

	pos, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid position: %s", fields[1])
	}

	r := &Record{
		Chrom:  fields[0],
		Pos:    pos,
		ID:     fields[2],
		Ref:    fields[3],
		Alts:   strings.Split(fields[4], ","),
		Qual:   fields[5],
		Filter: fields[6],
		Info:   ParseInfo(fields[7], fields[6]),
		Format: parseFormat(fields),
		Sex:    sex,
		Line:   fields,
	}

	if r.Ref == "" || len(r.Alts) == 0 || r.Alts[0] == "" {
		return nil, fmt.Errorf("missing alleles at %s:%d", r.Chrom, r.Pos)
	}

	if isSymbolic(fields[4]) && fields[4] != RefAllele {
		r.Kind = KindCNV
	}

	cfg.resolveConsequence(&r.Info, r.Chrom, r.Pos)

	switch r.Kind {
	case KindCNV:
		r.End = r.cnvEnd()
		r.Inheritance = parseInheritance(r.Format)
		r.Genotype = cnvGenotype(r.Alts)
	default:
		gt, err := parseGenotype(r.Format["GT"], r.Chrom, r.Pos, sex)
		if err != nil {
			return nil, err
		}
		r.Genotype = gt
	}

	return r, nil
}

// parseFormat zips the FORMAT keys (column 8) with the first sample's
// values (column 9).
func parseFormat(fields []string) map[string]string {
	format := make(map[string]string)
	if len(fields) < 10 {
		return format
	}
	keys := strings.Split(fields[8], ":")
	values := strings.Split(fields[9], ":")
	for i, key := range keys {
		if i < len(values) {
			format[key] = values[i]
		}
	}
	return format
}

// parseGenotype converts a GT field to alt allele dosage. Males on the
// non-pseudoautosomal X carry one allele, so heterozygous calls there are
// impossible and hemizygous alts count as homozygous.
func parseGenotype(gt, chrom string, pos int64, sex family.Sex) (int, error) {
	if gt == "" {
		return 0, fmt.Errorf("missing GT field at %s:%d", chrom, pos)
	}

	alleles := strings.FieldsFunc(gt, func(r rune) bool {
		return r == '/' || r == '|'
	})

	dosage := 0
	for _, a := range alleles {
		if a != "0" && a != "." {
			dosage++
		}
	}

	if isMaleHemizygous(chrom, pos, sex) {
		switch dosage {
		case 0:
			return 0, nil
		case len(alleles):
			return 2, nil
		default:
			return 0, fmt.Errorf("%w: heterozygous male X call at %s:%d", ErrImpossibleGenotype, chrom, pos)
		}
	}

	if len(alleles) == 1 && dosage == 1 {
		dosage = 2 // haploid alt recorded as homozygous
	}

	return dosage, nil
}

func isMaleHemizygous(chrom string, pos int64, sex family.Sex) bool {
	if !sex.IsMale() {
		return false
	}
	if normalizeChrom(chrom) != "X" {
		return false
	}
	for _, par := range pseudoautosomal {
		if pos >= par[0] && pos <= par[1] {
			return false
		}
	}
	return true
}

// cnvGenotype codes a copy-number call: reference-like calls are 0,
// anything carrying an alternate allele is a carrier.
func cnvGenotype(alts []string) int {
	for _, alt := range alts {
		if alt != RefAllele {
			return 1
		}
	}
	return 0
}

func (r *Record) cnvEnd() int64 {
	if v, ok := r.Info.Field("END"); ok {
		if end, err := strconv.ParseInt(v.Raw, 10, 64); err == nil && end >= r.Pos {
			return end
		}
	}
	return r.Pos
}

// parseInheritance reads the CNV inheritance class inferred upstream by
// comparison against the parental calls.
func parseInheritance(format map[string]string) Inheritance {
	raw, ok := format["INHERITANCE"]
	if !ok {
		raw = format["CIFER_INHERITANCE"]
	}
	switch Inheritance(raw) {
	case InheritancePaternal, InheritanceMaternal, InheritanceBiparental:
		return Inheritance(raw)
	}
	return InheritanceUnknown
}

// Key returns the matching key for this record.
func (r *Record) Key() Key {
	key := Key{Chrom: r.Chrom, Pos: r.Pos}
	if r.Kind == KindCNV {
		key.Alts = strings.Join(r.Alts, ",")
	}
	return key
}

// IsCNV reports whether the record is a copy-number variant.
func (r *Record) IsCNV() bool {
	return r.Kind == KindCNV
}

// Range returns the genomic span of the call. For point variants the
// start and end coincide.
func (r *Record) Range() (int64, int64) {
	if r.Kind == KindCNV {
		return r.Pos, r.End
	}
	return r.Pos, r.Pos
}

// MutationID returns the variant identifier, or "NA" when unknown.
func (r *Record) MutationID() string {
	if r.ID == "" || r.ID == "." {
		return "NA"
	}
	return r.ID
}

// Consequence returns the resolved consequence annotation, if any.
func (r *Record) Consequence() string {
	if v, ok := r.Info.Field("CQ"); ok {
		return v.Raw
	}
	return ""
}

// Gene returns the gene symbol for the call. Some pipelines emit HGNC,
// older ones a bare "gene" field.
func (r *Record) Gene() string {
	if v, ok := r.Info.Field("HGNC"); ok {
		return v.Raw
	}
	if v, ok := r.Info.Field("gene"); ok {
		return v.Raw
	}
	return ""
}

func isSymbolic(alt string) bool {
	return strings.HasPrefix(alt, "<") && strings.HasSuffix(alt, ">")
}

func normalizeChrom(chrom string) string {
	if len(chrom) > 3 && chrom[:3] == "chr" {
		return chrom[3:]
	}
	return chrom
}
