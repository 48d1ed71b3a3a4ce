package trio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RuthEberhardt/clinical-filter/internal/family"
	"github.com/RuthEberhardt/clinical-filter/internal/mnv"
	"github.com/RuthEberhardt/clinical-filter/internal/policy"
	"github.com/RuthEberhardt/clinical-filter/internal/vcf"
)

var trioConfig = &vcf.Config{
	ConsequenceFields: []string{"CQ"},
	Populations:       []string{"MAX_AF"},
}

// sliceSource feeds pre-tokenized lines, standing in for a VCF parser.
type sliceSource struct {
	lines [][]string
	pos   int
}

func (s *sliceSource) Next() ([]string, error) {
	if s.pos >= len(s.lines) {
		return nil, nil
	}
	line := s.lines[s.pos]
	s.pos++
	return line, nil
}

func (s *sliceSource) Close() error { return nil }

func testPolicy() *policy.Policy {
	return policy.New(policy.Default(nil, []string{"MAX_AF"}, 0.01), []string{"MAX_AF"})
}

func proband() *family.Person {
	return &family.Person{ID: "DDDP100001", Sex: family.Female, Affected: true}
}

func TestLoadProband_AppliesPolicy(t *testing.T) {
	src := &sliceSource{lines: [][]string{
		{"1", "5000", ".", "C", "T", "50", "PASS", "HGNC=ARID1B;CQ=stop_gained", "GT", "0/1"},
		{"2", "1000", ".", "A", "G", "50", "LowQual", "HGNC=MEF2C;CQ=stop_gained", "GT", "0/1"},
		{"3", "7500", ".", "G", "A", "50", "PASS", "HGNC=TTN;CQ=synonymous_variant", "GT", "0/1"},
	}}

	loader := NewLoader(trioConfig, testPolicy())
	records, err := loader.LoadProband(src, proband())
	require.NoError(t, err)

	require.Len(t, records, 1)
	assert.Equal(t, "1", records[0].Chrom)
}

func TestLoadProband_AttachesMNVCode(t *testing.T) {
	src := &sliceSource{lines: [][]string{
		{"1", "5000", ".", "C", "T", "50", "PASS", "HGNC=ARID1B;CQ=stop_gained", "GT", "0/1"},
	}}

	loader := NewLoader(trioConfig, testPolicy())
	loader.SetMNVCandidates(mnv.Candidates{
		{Chrom: "1", Pos: 5000}: "modified_protein_altering_mnv",
	})

	records, err := loader.LoadProband(src, proband())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "modified_protein_altering_mnv", records[0].MNVCode)
}

func TestLoadProband_SkipsImpossibleGenotype(t *testing.T) {
	src := &sliceSource{lines: [][]string{
		{"X", "32867861", ".", "C", "T", "50", "PASS", "HGNC=DMD;CQ=stop_gained", "GT", "0/1"},
		{"1", "5000", ".", "C", "T", "50", "PASS", "HGNC=ARID1B;CQ=stop_gained", "GT", "0/1"},
	}}

	loader := NewLoader(trioConfig, testPolicy())
	male := &family.Person{ID: "DDDP100002", Sex: family.Male, Affected: true}

	records, err := loader.LoadProband(src, male)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "1", records[0].Chrom)
}

func TestLoadParent_MatchesKeysWithoutPolicy(t *testing.T) {
	keys := map[vcf.Key]bool{
		{Chrom: "2", Pos: 1000}: true,
	}

	// the matching line would fail the proband policy (LowQual,
	// non-functional); parents are materialized regardless
	src := &sliceSource{lines: [][]string{
		{"2", "1000", ".", "A", "G", "50", "LowQual", "CQ=synonymous_variant", "GT", "0/1"},
		{"9", "999", ".", "T", "C", "50", "PASS", "CQ=stop_gained", "GT", "1/1"},
	}}

	loader := NewLoader(trioConfig, testPolicy())
	mother := &family.Person{ID: "DDDM100001", Sex: family.Female}

	records, err := loader.LoadParent(src, mother, keys)
	require.NoError(t, err)

	require.Len(t, records, 1)
	assert.Equal(t, "2", records[0].Chrom)
	assert.Equal(t, 1, records[0].Genotype)
}

func TestLoadParent_NilPerson(t *testing.T) {
	loader := NewLoader(trioConfig, testPolicy())
	records, err := loader.LoadParent(&sliceSource{}, nil, nil)
	require.NoError(t, err)
	assert.Nil(t, records)
}

func TestKeySet(t *testing.T) {
	src := &sliceSource{lines: [][]string{
		{"1", "5000", ".", "C", "T", "50", "PASS", "CQ=stop_gained", "GT", "0/1"},
		{"5", "50000", ".", "A", "<DUP>", "50", "PASS", "CQ=coding_sequence_variant;END=75000", "INHERITANCE", "maternal"},
	}}

	loader := NewLoader(trioConfig, testPolicy())
	records, err := loader.LoadProband(src, proband())
	require.NoError(t, err)

	keys := KeySet(records)
	assert.True(t, keys[vcf.Key{Chrom: "1", Pos: 5000}])
	assert.True(t, keys[vcf.Key{Chrom: "5", Pos: 50000, Alts: "<DUP>"}])
	assert.False(t, keys[vcf.Key{Chrom: "5", Pos: 50000}])
}
