package trio

import (
	"github.com/RuthEberhardt/clinical-filter/internal/family"
	"github.com/RuthEberhardt/clinical-filter/internal/vcf"
)

// TrioRecord is one candidate site for the whole family: the child's
// call plus the matching or synthesized parental calls. Mother and
// Father are nil for families without parents. Constructed only by
// Resolve and not mutated afterwards, except for the de novo verdict.
type TrioRecord struct {
	Chrom      string
	Pos        int64
	Child      *vcf.Record
	Mother     *vcf.Record
	Father     *vcf.Record
	HasParents bool

	deNovoChecked bool
	deNovoPassed  bool
}

// PassedDeNovoCheck reports the verdict attached by FilterDeNovos.
// True for records the post-filter has not examined.
func (t *TrioRecord) PassedDeNovoCheck() bool {
	if !t.deNovoChecked {
		return true
	}
	return t.deNovoPassed
}

// Resolve combines each accepted proband record with the corresponding
// parental records, synthesizing default parental calls where no match
// exists. Families without parents get records with absent parents.
func Resolve(fam *family.Family, child, mother, father []*vcf.Record) []*TrioRecord {
	motherIndex := index(mother)
	fatherIndex := index(father)

	var trios []*TrioRecord
	for _, rec := range child {
		trio := &TrioRecord{
			Chrom:      rec.Chrom,
			Pos:        rec.Pos,
			Child:      rec,
			HasParents: fam.HasParents(),
		}
		if fam.HasParents() {
			trio.Mother = parentalRecord(rec, motherIndex, fam.Mother)
			trio.Father = parentalRecord(rec, fatherIndex, fam.Father)
		}
		trios = append(trios, trio)
	}

	return trios
}

func index(records []*vcf.Record) map[vcf.Key]*vcf.Record {
	m := make(map[vcf.Key]*vcf.Record, len(records))
	for _, r := range records {
		m[r.Key()] = r
	}
	return m
}

// parentalRecord finds the parent's call matching the child's, or
// synthesizes a default one. Copy-number calls skip key matching
// entirely: breakpoints are rarely called identically across
// individuals, so coordinate equality would produce false negatives.
func parentalRecord(child *vcf.Record, parental map[vcf.Key]*vcf.Record, parent *family.Person) *vcf.Record {
	if !child.IsCNV() {
		if match, ok := parental[child.Key()]; ok {
			return match
		}
		return synthesizeSNV(child, parent)
	}
	return synthesizeCNV(child, parent)
}

// synthesizeSNV builds a homozygous-reference parental call carrying the
// child's site and alleles.
func synthesizeSNV(child *vcf.Record, parent *family.Person) *vcf.Record {
	return &vcf.Record{
		Chrom:    child.Chrom,
		Pos:      child.Pos,
		ID:       child.ID,
		Ref:      child.Ref,
		Alts:     append([]string(nil), child.Alts...),
		Qual:     child.Qual,
		Filter:   child.Filter,
		Info:     child.Info,
		Format:   map[string]string{"GT": "0/0"},
		Kind:     vcf.KindSNV,
		Sex:      parent.Sex,
		Genotype: 0,
	}
}

// synthesizeCNV builds a parental copy-number call. The allele set is
// the child's when the child's inheritance class attributes the event
// to this parent, otherwise a reference-like no-call. CNV zygosity is
// not expressed as a genotype, so the format carries an explicit
// inheritance-confidence field instead of GT.
func synthesizeCNV(child *vcf.Record, parent *family.Person) *vcf.Record {
	alts := []string{vcf.RefAllele}
	inh := child.Inheritance
	if parent.Sex.IsMale() && (inh == vcf.InheritancePaternal || inh == vcf.InheritanceBiparental) {
		alts = append([]string(nil), child.Alts...)
	} else if parent.Sex.IsFemale() && (inh == vcf.InheritanceMaternal || inh == vcf.InheritanceBiparental) {
		alts = append([]string(nil), child.Alts...)
	}

	genotype := 0
	if alts[0] != vcf.RefAllele {
		genotype = 1
	}

	return &vcf.Record{
		Chrom:       child.Chrom,
		Pos:         child.Pos,
		ID:          child.ID,
		Ref:         child.Ref,
		Alts:        alts,
		Qual:        child.Qual,
		Filter:      child.Filter,
		Info:        child.Info,
		Format:      map[string]string{"INHERITANCE": "uncertain"},
		Kind:        vcf.KindCNV,
		Sex:         parent.Sex,
		Genotype:    genotype,
		End:         child.End,
		Inheritance: vcf.InheritanceUnknown,
	}
}
