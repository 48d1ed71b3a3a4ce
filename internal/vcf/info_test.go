package vcf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseInfo(t *testing.T) {
	info := ParseInfo("HGNC=ARID1B;CQ=missense_variant;DENOVO-SNP;AFR_AF=0.01", "PASS")

	v, ok := info.Field("HGNC")
	assert.True(t, ok)
	assert.Equal(t, "ARID1B", v.Raw)

	flag, ok := info.Field("DENOVO-SNP")
	assert.True(t, ok)
	assert.True(t, flag.Flag)

	// FILTER is folded into the field map for policy evaluation
	filter, ok := info.Field("FILTER")
	assert.True(t, ok)
	assert.Equal(t, "PASS", filter.Raw)
}

func TestParseInfo_ValueWithEquals(t *testing.T) {
	info := ParseInfo("ENST=ENST00000346085;HGVS=c.34G>T;p.=x", "PASS")

	v, ok := info.Field("HGVS")
	assert.True(t, ok)
	assert.Equal(t, "c.34G>T", v.Raw)
}

func TestInfoString_PreservesOrder(t *testing.T) {
	raw := "HGNC=ARID1B;CQ=missense_variant;DENOVO-SNP;AFR_AF=0.01"
	info := ParseInfo(raw, "PASS")
	assert.Equal(t, raw, info.String())

	info.Set("CANDIDATE_MNV", "modified_synonymous_mnv")
	assert.Equal(t, raw+";CANDIDATE_MNV=modified_synonymous_mnv", info.String())
}

func TestNumber(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		want  float64
		valid bool
	}{
		{"plain float", "0.005", 0.005, true},
		{"integer", "3", 3, true},
		{"missing", ".", 0, false},
		{"double missing", ".,.", 0, false},
		{"comma pair", ".,0.639860", 0.639860, true},
		{"comma pair first", "0.1,.", 0.1, true},
		{"text", "benign", 0, false},
		{"empty", "", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, ok := Number(tt.raw)
			assert.Equal(t, tt.valid, ok)
			if tt.valid {
				assert.Equal(t, tt.want, n)
			}
		})
	}
}

func TestMaxAlleleFrequency(t *testing.T) {
	populations := []string{"AFR_AF", "EUR_AF", "DDD_AF", "MAX_AF"}

	info := ParseInfo("AFR_AF=0.01;EUR_AF=.,0.05;DDD_AF=not_a_number", "PASS")
	max, ok := info.MaxAlleleFrequency(populations)
	assert.True(t, ok)
	assert.Equal(t, 0.05, max)
}

func TestMaxAlleleFrequency_NoneRecorded(t *testing.T) {
	info := ParseInfo("AFR_AF=.;HGNC=ARID1B", "PASS")
	_, ok := info.MaxAlleleFrequency([]string{"AFR_AF", "EUR_AF"})
	assert.False(t, ok)
}
