package trio

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/RuthEberhardt/clinical-filter/internal/family"
	"github.com/RuthEberhardt/clinical-filter/internal/mnv"
	"github.com/RuthEberhardt/clinical-filter/internal/policy"
	"github.com/RuthEberhardt/clinical-filter/internal/vcf"
)

// SourceOpener opens the line source for one family member. The default
// opener reads the member's VCF from disk.
type SourceOpener func(p *family.Person) (LineSource, error)

// OpenVCF is the default SourceOpener.
func OpenVCF(p *family.Person) (LineSource, error) {
	return vcf.NewParser(p.Path)
}

// Pipeline runs the full per-family filtering sequence: individual
// scans, trio resolution and the de novo post-filter. Its configuration
// is read-only, so one pipeline is safely shared across concurrently
// processed families.
type Pipeline struct {
	cfg         *vcf.Config
	policy      *policy.Policy
	ppThreshold float64
	open        SourceOpener
	logger      *zap.Logger
}

// NewPipeline creates a pipeline. ppThreshold is the PP_DNM probability
// below which apparent de novo calls are dropped.
func NewPipeline(cfg *vcf.Config, pol *policy.Policy, ppThreshold float64) *Pipeline {
	return &Pipeline{
		cfg:         cfg,
		policy:      pol,
		ppThreshold: ppThreshold,
		open:        OpenVCF,
		logger:      zap.NewNop(),
	}
}

// SetLogger sets the logger used across the pipeline stages.
func (pl *Pipeline) SetLogger(l *zap.Logger) {
	pl.logger = l
}

// SetSourceOpener overrides how member line sources are opened.
func (pl *Pipeline) SetSourceOpener(open SourceOpener) {
	pl.open = open
}

// LoadFamily filters one family. The proband is scanned first to build
// the accepted key set; the two parental scans then run concurrently
// and join before trio resolution begins.
func (pl *Pipeline) LoadFamily(ctx context.Context, fam *family.Family, mnvs mnv.Candidates) ([]*TrioRecord, error) {
	loader := NewLoader(pl.cfg, pl.policy)
	loader.SetLogger(pl.logger)
	loader.SetMNVCandidates(mnvs)

	child, err := pl.scanProband(loader, fam.Child)
	if err != nil {
		return nil, fmt.Errorf("scan proband %s: %w", fam.Child.ID, err)
	}
	keys := KeySet(child)

	var mother, father []*vcf.Record
	if fam.HasParents() {
		g, _ := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			mother, err = pl.scanParent(loader, fam.Mother, keys)
			return err
		})
		g.Go(func() error {
			var err error
			father, err = pl.scanParent(loader, fam.Father, keys)
			return err
		})
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	trios := Resolve(fam, child, mother, father)
	kept := FilterDeNovos(trios, pl.ppThreshold, pl.logger)

	pl.logger.Info("family filtered",
		zap.String("family", fam.ID),
		zap.String("proband", fam.Child.ID),
		zap.Bool("has_parents", fam.HasParents()),
		zap.Int("proband_variants", len(child)),
		zap.Int("candidates", len(kept)))

	return kept, nil
}

func (pl *Pipeline) scanProband(loader *Loader, person *family.Person) ([]*vcf.Record, error) {
	src, err := pl.open(person)
	if err != nil {
		return nil, err
	}
	defer src.Close()
	return loader.LoadProband(src, person)
}

func (pl *Pipeline) scanParent(loader *Loader, person *family.Person, keys map[vcf.Key]bool) ([]*vcf.Record, error) {
	src, err := pl.open(person)
	if err != nil {
		return nil, fmt.Errorf("scan parent %s: %w", person.ID, err)
	}
	defer src.Close()
	return loader.LoadParent(src, person, keys)
}
