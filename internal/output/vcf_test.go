package output

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RuthEberhardt/clinical-filter/internal/family"
	"github.com/RuthEberhardt/clinical-filter/internal/trio"
	"github.com/RuthEberhardt/clinical-filter/internal/vcf"
)

var probandHeader = []string{
	"##fileformat=VCFv4.1",
	`##INFO=<ID=CQ,Number=1,Type=String,Description="Consequence">`,
	"#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\tFORMAT\tDDDP100001",
}

func TestVCFWriter_Header(t *testing.T) {
	var buf strings.Builder
	vw := NewVCFWriter(&buf, probandHeader)
	vw.now = func() time.Time { return time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC) }

	require.NoError(t, vw.WriteHeader())
	require.NoError(t, vw.Flush())

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	assert.Equal(t, "##fileformat=VCFv4.1", lines[0])
	assert.Contains(t, lines, `##INFO=<ID=CANDIDATE_MNV,Number=.,Type=String,Description="Code for candidate multinucleotide variants.">`)
	assert.Contains(t, lines, "##ClinicalFilterRunDate=2026-08-25")
	assert.True(t, strings.HasPrefix(lines[len(lines)-1], "#CHROM"))
}

func TestVCFWriter_MissingHeader(t *testing.T) {
	vw := NewVCFWriter(&strings.Builder{}, nil)
	assert.Error(t, vw.WriteHeader())
}

func TestVCFWriter_WriteSNV(t *testing.T) {
	var buf strings.Builder
	vw := NewVCFWriter(&buf, probandHeader)

	tr := snvTrio(t)
	tr.Mother.Genotype = 1

	require.NoError(t, vw.Write(outputFamily(), tr))
	require.NoError(t, vw.Flush())

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	record := lines[len(lines)-1]
	fields := strings.Split(record, "\t")
	require.Len(t, fields, 10)

	assert.Equal(t, "GT:GQ:PP_DNM:INHERITANCE:INHERITANCE_GENOTYPE", fields[8])
	assert.Equal(t, "0/1:99:0.95:maternal:1,1,0", fields[9])
}

func TestVCFWriter_WriteCNV(t *testing.T) {
	child, err := vcf.NewRecord([]string{"5", "50000", ".", "A", "<DUP>", "50", "PASS",
		"HGNC=MEF2C;CQ=coding_sequence_variant;END=75000",
		"INHERITANCE", "maternal"}, family.Female, outputConfig)
	require.NoError(t, err)

	tr := &trio.TrioRecord{
		Chrom:      "5",
		Pos:        50000,
		Child:      child,
		Mother:     &vcf.Record{Genotype: 1, Sex: family.Female},
		Father:     &vcf.Record{Genotype: 0, Sex: family.Male},
		HasParents: true,
	}

	var buf strings.Builder
	vw := NewVCFWriter(&buf, probandHeader)
	require.NoError(t, vw.Write(outputFamily(), tr))
	require.NoError(t, vw.Flush())

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	fields := strings.Split(lines[len(lines)-1], "\t")

	// the copy-number call's own INHERITANCE field is kept as is, with
	// no duplicate key and no 012 codes
	assert.Equal(t, "INHERITANCE", fields[8])
	assert.Equal(t, "maternal", fields[9])
}

func TestVCFWriter_SampleColumnPadding(t *testing.T) {
	snvLine := []string{"2", "1000", "rs1234", "A", "G", "50", "PASS",
		"CQ=missense_variant", "GT", "0/1", "0/1", "0/0"}
	child, err := vcf.NewRecord(snvLine, family.Female, outputConfig)
	require.NoError(t, err)

	tr := &trio.TrioRecord{
		Chrom:      "2",
		Pos:        1000,
		Child:      child,
		Mother:     &vcf.Record{Genotype: 1, Sex: family.Female},
		Father:     &vcf.Record{Genotype: 0, Sex: family.Male},
		HasParents: true,
	}

	var buf strings.Builder
	vw := NewVCFWriter(&buf, probandHeader)
	require.NoError(t, vw.Write(outputFamily(), tr))
	require.NoError(t, vw.Flush())

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	fields := strings.Split(lines[len(lines)-1], "\t")
	require.Len(t, fields, 12)

	// extra sample columns pick up one empty value per added format key
	assert.Equal(t, "GT:INHERITANCE:INHERITANCE_GENOTYPE", fields[8])
	assert.Equal(t, "0/1::", fields[10])
	assert.Equal(t, "0/0::", fields[11])
}

func TestVCFWriter_CNVSampleColumnsUntouched(t *testing.T) {
	cnvLine := []string{"5", "50000", ".", "A", "<DUP>", "50", "PASS",
		"CQ=coding_sequence_variant;END=75000", "INHERITANCE", "maternal", "."}
	child, err := vcf.NewRecord(cnvLine, family.Female, outputConfig)
	require.NoError(t, err)

	tr := &trio.TrioRecord{Chrom: "5", Pos: 50000, Child: child}

	var buf strings.Builder
	vw := NewVCFWriter(&buf, probandHeader)
	require.NoError(t, vw.Write(outputFamily(), tr))
	require.NoError(t, vw.Flush())

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	fields := strings.Split(lines[len(lines)-1], "\t")
	require.Len(t, fields, 11)
	assert.Equal(t, ".", fields[10])
}

func TestVCFWriter_MNVAnnotation(t *testing.T) {
	var buf strings.Builder
	vw := NewVCFWriter(&buf, probandHeader)

	tr := snvTrio(t)
	tr.Child.MNVCode = "modified_synonymous_mnv"

	require.NoError(t, vw.Write(outputFamily(), tr))
	require.NoError(t, vw.Flush())

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	fields := strings.Split(lines[len(lines)-1], "\t")
	assert.Contains(t, fields[7], "CANDIDATE_MNV=modified_synonymous_mnv")
}

func TestParentalInheritance(t *testing.T) {
	tests := []struct {
		name           string
		mother, father int
		want           string
	}{
		{"de novo", 0, 0, "deNovo"},
		{"paternal", 0, 1, "paternal"},
		{"maternal", 1, 0, "maternal"},
		{"biparental", 1, 2, "biparental"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := &trio.TrioRecord{
				Mother:     &vcf.Record{Genotype: tt.mother},
				Father:     &vcf.Record{Genotype: tt.father},
				HasParents: true,
			}
			assert.Equal(t, tt.want, parentalInheritance(tr))
		})
	}

	assert.Equal(t, "unknown", parentalInheritance(&trio.TrioRecord{}))
}
