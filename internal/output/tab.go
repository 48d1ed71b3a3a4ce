// Package output provides candidate report writers.
package output

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/RuthEberhardt/clinical-filter/internal/family"
	"github.com/RuthEberhardt/clinical-filter/internal/trio"
)

// ReportWriter is the interface for writing accepted trio candidates.
type ReportWriter interface {
	WriteHeader() error
	Write(fam *family.Family, t *trio.TrioRecord) error
	Flush() error
}

// TabWriter writes candidates in tab-delimited format, one row per
// accepted trio record.
type TabWriter struct {
	w           *bufio.Writer
	populations []string
	columns     []string
}

// NewTabWriter creates a tab-delimited candidate writer. populations
// names the INFO fields searched for the MAX_MAF column.
func NewTabWriter(w io.Writer, populations []string) *TabWriter {
	return &TabWriter{
		w:           bufio.NewWriter(w),
		populations: populations,
		columns: []string{
			"proband",
			"sex",
			"chrom",
			"position",
			"gene",
			"mutation_ID",
			"transcript",
			"consequence",
			"ref/alt_alleles",
			"MAX_MAF",
			"trio_genotype",
			"mom_aff",
			"dad_aff",
			"pp_dnm",
			"GQ",
			"has_parents",
			"cnv_length",
		},
	}
}

// WriteHeader writes the column header line.
func (tw *TabWriter) WriteHeader() error {
	_, err := tw.w.WriteString(strings.Join(tw.columns, "\t") + "\n")
	return err
}

// Write writes one candidate row.
func (tw *TabWriter) Write(fam *family.Family, t *trio.TrioRecord) error {
	child := t.Child

	// report the prediction scores alongside the consequence, if available
	consequence := child.Consequence()
	if pp, ok := child.Info.Field("PolyPhen"); ok {
		consequence += ",PolyPhen=" + pp.Raw
	}
	if sift, ok := child.Info.Field("SIFT"); ok {
		consequence += ",SIFT=" + sift.Raw
	}
	if child.MNVCode != "" {
		consequence += ",CANDIDATE_MNV=" + child.MNVCode
	}

	transcript := "NA"
	if v, ok := child.Info.Field("ENST"); ok {
		transcript = v.Raw
	}

	gene := child.Gene()
	if gene == "" {
		gene = "NA"
	}

	alleles := fmt.Sprintf("%s/%s", child.Ref, strings.Join(child.Alts, ","))

	maxAF := "NA"
	if af, ok := child.Info.MaxAlleleFrequency(tw.populations); ok {
		maxAF = strconv.FormatFloat(af, 'g', -1, 64)
	}

	momAff, dadAff := "NA", "NA"
	if fam.HasParents() {
		momAff = affectedStatus(fam.Mother)
		dadAff = affectedStatus(fam.Father)
	}

	ppDNM := "NA"
	if v, ok := child.Format["PP_DNM"]; ok {
		ppDNM = v
	}

	gq := "NA"
	if v, ok := child.Format["GQ"]; ok {
		gq = v
	}

	cnvLength := "NA"
	if child.IsCNV() {
		start, end := child.Range()
		cnvLength = strconv.FormatInt(end-start, 10)
	}

	values := []string{
		fam.Child.ID,
		string(fam.Child.Sex),
		t.Chrom,
		strconv.FormatInt(t.Pos, 10),
		gene,
		child.MutationID(),
		transcript,
		consequence,
		alleles,
		maxAF,
		trioGenotype(t),
		momAff,
		dadAff,
		ppDNM,
		gq,
		strconv.FormatBool(t.HasParents),
		cnvLength,
	}

	_, err := tw.w.WriteString(strings.Join(values, "\t") + "\n")
	return err
}

// Flush flushes any buffered data to the underlying writer.
func (tw *TabWriter) Flush() error {
	return tw.w.Flush()
}

// trioGenotype formats the child/mother/father dosages, with NA for
// absent parents.
func trioGenotype(t *trio.TrioRecord) string {
	child := strconv.Itoa(t.Child.Genotype)
	mother, father := "NA", "NA"
	if t.Mother != nil {
		mother = strconv.Itoa(t.Mother.Genotype)
	}
	if t.Father != nil {
		father = strconv.Itoa(t.Father.Genotype)
	}
	return child + "/" + mother + "/" + father
}

func affectedStatus(p *family.Person) string {
	if p.Affected {
		return "affected"
	}
	return "unaffected"
}
