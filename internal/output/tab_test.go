package output

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RuthEberhardt/clinical-filter/internal/family"
	"github.com/RuthEberhardt/clinical-filter/internal/trio"
	"github.com/RuthEberhardt/clinical-filter/internal/vcf"
)

var outputConfig = &vcf.Config{
	ConsequenceFields: []string{"CQ"},
	Populations:       []string{"MAX_AF"},
}

func outputFamily() *family.Family {
	return &family.Family{
		ID:     "DDDF100001",
		Child:  &family.Person{ID: "DDDP100001", Sex: family.Female, Affected: true},
		Mother: &family.Person{ID: "DDDM100001", Sex: family.Female},
		Father: &family.Person{ID: "DDDD100001", Sex: family.Male},
	}
}

func outputRecord(t *testing.T, line []string, sex family.Sex) *vcf.Record {
	t.Helper()
	r, err := vcf.NewRecord(line, sex, outputConfig)
	require.NoError(t, err)
	return r
}

func snvTrio(t *testing.T) *trio.TrioRecord {
	t.Helper()
	child := outputRecord(t, []string{"2", "1000", "rs1234", "A", "G", "50", "PASS",
		"HGNC=MEF2C;CQ=missense_variant;MAX_AF=0.001;PolyPhen=probably_damaging(0.98);ENST=ENST00000346085",
		"GT:GQ:PP_DNM", "0/1:99:0.95"}, family.Female)
	return &trio.TrioRecord{
		Chrom:      "2",
		Pos:        1000,
		Child:      child,
		Mother:     &vcf.Record{Genotype: 0, Sex: family.Female},
		Father:     &vcf.Record{Genotype: 0, Sex: family.Male},
		HasParents: true,
	}
}

func TestTabWriter(t *testing.T) {
	var buf strings.Builder
	tw := NewTabWriter(&buf, []string{"MAX_AF"})

	require.NoError(t, tw.WriteHeader())
	require.NoError(t, tw.Write(outputFamily(), snvTrio(t)))
	require.NoError(t, tw.Flush())

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)

	header := strings.Split(lines[0], "\t")
	row := strings.Split(lines[1], "\t")
	require.Equal(t, len(header), len(row))

	fields := make(map[string]string, len(header))
	for i, col := range header {
		fields[col] = row[i]
	}

	assert.Equal(t, "DDDP100001", fields["proband"])
	assert.Equal(t, "F", fields["sex"])
	assert.Equal(t, "2", fields["chrom"])
	assert.Equal(t, "1000", fields["position"])
	assert.Equal(t, "MEF2C", fields["gene"])
	assert.Equal(t, "rs1234", fields["mutation_ID"])
	assert.Equal(t, "ENST00000346085", fields["transcript"])
	assert.Equal(t, "missense_variant,PolyPhen=probably_damaging(0.98)", fields["consequence"])
	assert.Equal(t, "A/G", fields["ref/alt_alleles"])
	assert.Equal(t, "0.001", fields["MAX_MAF"])
	assert.Equal(t, "1/0/0", fields["trio_genotype"])
	assert.Equal(t, "unaffected", fields["mom_aff"])
	assert.Equal(t, "unaffected", fields["dad_aff"])
	assert.Equal(t, "0.95", fields["pp_dnm"])
	assert.Equal(t, "99", fields["GQ"])
	assert.Equal(t, "true", fields["has_parents"])
	assert.Equal(t, "NA", fields["cnv_length"])
}

func TestTabWriter_MNVDecoration(t *testing.T) {
	var buf strings.Builder
	tw := NewTabWriter(&buf, nil)

	tr := snvTrio(t)
	tr.Child.MNVCode = "modified_protein_altering_mnv"

	require.NoError(t, tw.Write(outputFamily(), tr))
	require.NoError(t, tw.Flush())

	assert.Contains(t, buf.String(), "CANDIDATE_MNV=modified_protein_altering_mnv")
}

func TestTabWriter_Singleton(t *testing.T) {
	child := outputRecord(t, []string{"2", "1000", ".", "A", "G", "50", "PASS",
		"CQ=missense_variant", "GT", "0/1"}, family.Male)
	tr := &trio.TrioRecord{Chrom: "2", Pos: 1000, Child: child}

	fam := &family.Family{
		ID:    "DDDF100002",
		Child: &family.Person{ID: "DDDP100002", Sex: family.Male, Affected: true},
	}

	var buf strings.Builder
	tw := NewTabWriter(&buf, nil)
	require.NoError(t, tw.Write(fam, tr))
	require.NoError(t, tw.Flush())

	row := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\t")
	assert.Contains(t, row, "1/NA/NA")
	assert.Contains(t, row, "false")
}

func TestTabWriter_CNVLength(t *testing.T) {
	child := outputRecord(t, []string{"5", "50000", ".", "A", "<DUP>", "50", "PASS",
		"HGNC=MEF2C;CQ=coding_sequence_variant;END=75000",
		"INHERITANCE", "maternal"}, family.Female)
	tr := &trio.TrioRecord{Chrom: "5", Pos: 50000, Child: child}

	var buf strings.Builder
	tw := NewTabWriter(&buf, nil)
	require.NoError(t, tw.Write(outputFamily(), tr))
	require.NoError(t, tw.Flush())

	row := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\t")
	assert.Equal(t, "25000", row[len(row)-1])
}
