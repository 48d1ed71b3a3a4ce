package trio

import (
	"go.uber.org/zap"

	"github.com/RuthEberhardt/clinical-filter/internal/vcf"
)

// FilterDeNovos drops apparent de novo calls whose de novo probability
// falls below the threshold. A call is apparently de novo when both
// parental genotypes are homozygous reference; such calls are the most
// vulnerable to genotyping artifacts, so they additionally need a
// PP_DNM annotation at or above the threshold. A missing annotation
// rejects the call. Everything else, and every record in a parentless
// family, passes through unchanged.
func FilterDeNovos(trios []*TrioRecord, threshold float64, logger *zap.Logger) []*TrioRecord {
	if logger == nil {
		logger = zap.NewNop()
	}

	var kept []*TrioRecord
	for _, t := range trios {
		t.deNovoChecked = true
		t.deNovoPassed = passesDeNovoCheck(t, threshold)
		if t.deNovoPassed {
			kept = append(kept, t)
		} else {
			logger.Debug("dropped low-confidence de novo",
				zap.String("chrom", t.Chrom),
				zap.Int64("pos", t.Pos),
				zap.Float64("threshold", threshold))
		}
	}
	return kept
}

func passesDeNovoCheck(t *TrioRecord, threshold float64) bool {
	if !t.HasParents {
		return true
	}
	if t.Mother.Genotype != 0 || t.Father.Genotype != 0 {
		return true // inherited, confidence check does not apply
	}

	pp, ok := t.Child.Format["PP_DNM"]
	if !ok {
		return false
	}
	n, ok := vcf.Number(pp)
	if !ok {
		return false
	}
	return n >= threshold
}
