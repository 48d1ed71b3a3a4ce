package output

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/RuthEberhardt/clinical-filter/internal/family"
	"github.com/RuthEberhardt/clinical-filter/internal/trio"
)

// extraHeaderLines define the annotation fields the filter adds to
// exported records.
var extraHeaderLines = []string{
	`##INFO=<ID=CANDIDATE_MNV,Number=.,Type=String,Description="Code for candidate multinucleotide variants.">`,
	`##FORMAT=<ID=INHERITANCE_GENOTYPE,Number=.,Type=String,Description="The 012 coded genotypes for a trio (child, mother, father).">`,
	`##FORMAT=<ID=INHERITANCE,Number=.,Type=String,Description="The inheritance of the variant in the trio (biparental, paternal, maternal, deNovo).">`,
}

// VCFWriter exports accepted candidates as VCF records, using the
// proband's original header augmented with the filter's own fields.
type VCFWriter struct {
	w             *bufio.Writer
	header        []string
	headerWritten bool
	now           func() time.Time
}

// NewVCFWriter creates a VCF candidate writer. header is the proband's
// VCF header; the caller is responsible for gzip wrapping when writing
// a .vcf.gz path.
func NewVCFWriter(w io.Writer, header []string) *VCFWriter {
	return &VCFWriter{
		w:      bufio.NewWriter(w),
		header: header,
		now:    time.Now,
	}
}

// WriteHeader writes the augmented header: the proband's meta lines,
// the filter's INFO/FORMAT definitions and run date, then the #CHROM
// column line.
func (vw *VCFWriter) WriteHeader() error {
	if len(vw.header) == 0 {
		return fmt.Errorf("missing proband vcf header")
	}

	meta, columns := vw.header[:len(vw.header)-1], vw.header[len(vw.header)-1]

	for _, line := range meta {
		if _, err := vw.w.WriteString(line + "\n"); err != nil {
			return err
		}
	}
	for _, line := range extraHeaderLines {
		if _, err := vw.w.WriteString(line + "\n"); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(vw.w, "##ClinicalFilterRunDate=%s\n", vw.now().Format("2006-01-02")); err != nil {
		return err
	}
	if _, err := vw.w.WriteString(columns + "\n"); err != nil {
		return err
	}

	vw.headerWritten = true
	return nil
}

// Write exports one candidate as a VCF record, decorating the child's
// original line with the trio inheritance fields.
func (vw *VCFWriter) Write(fam *family.Family, t *trio.TrioRecord) error {
	if !vw.headerWritten {
		if err := vw.WriteHeader(); err != nil {
			return err
		}
	}

	child := t.Child
	if len(child.Line) < 8 {
		return fmt.Errorf("candidate at %s:%d has no source line", t.Chrom, t.Pos)
	}

	line := append([]string(nil), child.Line...)

	if child.MNVCode != "" {
		child.Info.Set("CANDIDATE_MNV", child.MNVCode)
	}
	line[7] = child.Info.String()

	if len(line) >= 10 {
		// CNV lines already carry an INHERITANCE format field
		if !strings.Contains(line[8], "INHERITANCE") {
			line[8] += ":INHERITANCE"
			line[9] += ":" + parentalInheritance(t)
		}

		if !child.IsCNV() {
			line[8] += ":INHERITANCE_GENOTYPE"
			line[9] += ":" + trioGenotypeCSV(t)

			// pad the remaining sample columns for the added format keys
			for i := 10; i < len(line); i++ {
				line[i] += "::"
			}
		}
	}

	_, err := vw.w.WriteString(strings.Join(line, "\t") + "\n")
	return err
}

// Flush flushes any buffered data to the underlying writer.
func (vw *VCFWriter) Flush() error {
	return vw.w.Flush()
}

// parentalInheritance classifies how the child's call was inherited,
// from the parental genotypes.
func parentalInheritance(t *trio.TrioRecord) string {
	if !t.HasParents {
		return "unknown"
	}

	mother, father := t.Mother.Genotype, t.Father.Genotype
	switch {
	case mother == 0 && father == 0:
		return "deNovo"
	case mother == 0 && father != 0:
		return "paternal"
	case mother != 0 && father == 0:
		return "maternal"
	}
	return "biparental"
}

func trioGenotypeCSV(t *trio.TrioRecord) string {
	mother, father := "NA", "NA"
	if t.Mother != nil {
		mother = fmt.Sprintf("%d", t.Mother.Genotype)
	}
	if t.Father != nil {
		father = fmt.Sprintf("%d", t.Father.Genotype)
	}
	return fmt.Sprintf("%d,%s,%s", t.Child.Genotype, mother, father)
}
