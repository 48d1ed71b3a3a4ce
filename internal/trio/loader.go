// Package trio resolves a proband's variant calls against the parental
// calls and applies the family-level filters.
package trio

import (
	"errors"

	"go.uber.org/zap"

	"github.com/RuthEberhardt/clinical-filter/internal/family"
	"github.com/RuthEberhardt/clinical-filter/internal/mnv"
	"github.com/RuthEberhardt/clinical-filter/internal/policy"
	"github.com/RuthEberhardt/clinical-filter/internal/vcf"
)

// LineSource yields tokenized variant lines for one individual, header
// already excluded. Next returns nil at the end of the sequence.
type LineSource interface {
	Next() ([]string, error)
	Close() error
}

// Loader scans one family member's variant calls.
type Loader struct {
	cfg    *vcf.Config
	policy *policy.Policy
	mnvs   mnv.Candidates
	logger *zap.Logger
}

// NewLoader creates a loader with shared parsing configuration and the
// proband filtering policy.
func NewLoader(cfg *vcf.Config, pol *policy.Policy) *Loader {
	return &Loader{
		cfg:    cfg,
		policy: pol,
		logger: zap.NewNop(),
	}
}

// SetLogger sets the logger for skip diagnostics.
func (l *Loader) SetLogger(logger *zap.Logger) {
	l.logger = logger
}

// SetMNVCandidates supplies the injected MNV co-occurrence codes,
// attached to proband records as they are built.
func (l *Loader) SetMNVCandidates(candidates mnv.Candidates) {
	l.mnvs = candidates
}

// LoadProband scans the proband's calls, keeping records that pass the
// filter policy. Structurally invalid lines are dropped, never fatal.
func (l *Loader) LoadProband(src LineSource, person *family.Person) ([]*vcf.Record, error) {
	return l.load(src, person, nil)
}

// LoadParent scans a parent's calls, materializing only lines whose key
// matches an accepted proband call. Parents are never policy-filtered:
// the clinical question is inheritance, not the parent's own calling
// confidence.
func (l *Loader) LoadParent(src LineSource, person *family.Person, probandKeys map[vcf.Key]bool) ([]*vcf.Record, error) {
	return l.load(src, person, probandKeys)
}

func (l *Loader) load(src LineSource, person *family.Person, probandKeys map[vcf.Key]bool) ([]*vcf.Record, error) {
	if person == nil {
		return nil, nil
	}

	var records []*vcf.Record
	for {
		line, err := src.Next()
		if err != nil {
			return nil, err
		}
		if line == nil {
			return records, nil
		}

		if probandKeys != nil {
			key, err := vcf.LineKey(line)
			if err != nil || !probandKeys[key] {
				continue
			}
		}

		record, err := vcf.NewRecord(line, person.Sex, l.cfg)
		if err != nil {
			l.skip(line, err)
			continue
		}

		if probandKeys == nil {
			record.MNVCode = l.mnvs.Code(record.Chrom, record.Pos)
			if !l.policy.Passes(record) {
				continue
			}
		}

		records = append(records, record)
	}
}

// skip drops a malformed line, with a diagnostic when it sits at the
// debug coordinate.
func (l *Loader) skip(line []string, err error) {
	key, keyErr := vcf.LineKey(line)
	if keyErr != nil || !l.cfg.IsDebug(key.Chrom, key.Pos) {
		return
	}
	if errors.Is(err, vcf.ErrImpossibleGenotype) {
		l.logger.Info("failed as heterozygous genotype in male on chrX",
			zap.String("chrom", key.Chrom),
			zap.Int64("pos", key.Pos))
		return
	}
	l.logger.Info("dropped malformed record",
		zap.String("chrom", key.Chrom),
		zap.Int64("pos", key.Pos),
		zap.Error(err))
}

// KeySet builds the O(1) membership index over accepted proband records.
func KeySet(records []*vcf.Record) map[vcf.Key]bool {
	keys := make(map[vcf.Key]bool, len(records))
	for _, r := range records {
		keys[r.Key()] = true
	}
	return keys
}
