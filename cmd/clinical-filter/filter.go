package main

import (
	"bufio"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/RuthEberhardt/clinical-filter/internal/family"
	"github.com/RuthEberhardt/clinical-filter/internal/mnv"
	"github.com/RuthEberhardt/clinical-filter/internal/output"
	"github.com/RuthEberhardt/clinical-filter/internal/policy"
	"github.com/RuthEberhardt/clinical-filter/internal/store"
	"github.com/RuthEberhardt/clinical-filter/internal/trio"
	"github.com/RuthEberhardt/clinical-filter/internal/vcf"
)

type filterOptions struct {
	childPath  string
	motherPath string
	fatherPath string
	probandID  string
	sex        string
	pedPath    string

	knownGenesPath string
	mnvPath        string
	lastBasePath   string

	outputPath string
	exportVCF  string
	dbPath     string

	debugChrom string
	debugPos   int64
	workers    int
	verbose    bool
}

func newFilterCmd() *cobra.Command {
	opts := &filterOptions{}

	cmd := &cobra.Command{
		Use:   "filter",
		Short: "Filter one family or a ped file of families",
		Example: `  clinical-filter filter --child proband.vcf.gz --mother mom.vcf.gz \
      --father dad.vcf.gz --proband-id DDDP100001 --sex M
  clinical-filter filter --ped families.ped --output candidates.tsv
  clinical-filter filter --ped families.ped --db results.duckdb`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFilter(opts)
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&opts.childPath, "child", "", "Proband VCF path")
	fs.StringVar(&opts.motherPath, "mother", "", "Mother VCF path")
	fs.StringVar(&opts.fatherPath, "father", "", "Father VCF path")
	fs.StringVar(&opts.probandID, "proband-id", "proband", "Proband sample ID")
	fs.StringVar(&opts.sex, "sex", "", "Proband sex: M or F")
	fs.StringVar(&opts.pedPath, "ped", "", "Ped-like file of families (overrides --child/--mother/--father)")
	fs.StringVar(&opts.knownGenesPath, "known-genes", "", "File of reportable gene symbols, one per line")
	fs.StringVar(&opts.mnvPath, "mnv", "", "Multinucleotide candidate codes file (chrom, pos, code)")
	fs.StringVar(&opts.lastBasePath, "last-base", "", "Conserved last-base-of-exon sites file (chrom, pos)")
	fs.StringVarP(&opts.outputPath, "output", "o", "", "Tab-separated report path (default: stdout)")
	fs.StringVar(&opts.exportVCF, "export-vcf", "", "Directory to export per-proband candidate VCFs")
	fs.StringVar(&opts.dbPath, "db", "", "DuckDB path to persist candidates")
	fs.StringVar(&opts.debugChrom, "debug-chrom", "", "Chromosome to trace filtering decisions for")
	fs.Int64Var(&opts.debugPos, "debug-pos", 0, "Position to trace filtering decisions for")
	fs.IntVar(&opts.workers, "workers", 0, "Concurrent families (0 = number of CPUs)")
	fs.BoolVarP(&opts.verbose, "verbose", "v", false, "Verbose logging")

	return cmd
}

func runFilter(opts *filterOptions) error {
	logger, err := newLogger(opts.verbose)
	if err != nil {
		return err
	}
	defer logger.Sync()

	families, err := resolveFamilies(opts)
	if err != nil {
		return err
	}
	if len(families) == 0 {
		return fmt.Errorf("no families to filter")
	}

	cfg := &vcf.Config{
		ConsequenceFields: viper.GetStringSlice("consequence_fields"),
		Populations:       viper.GetStringSlice("populations"),
	}
	if opts.debugChrom != "" {
		cfg.Debug = &vcf.Site{Chrom: opts.debugChrom, Pos: opts.debugPos}
	}
	if opts.lastBasePath != "" {
		cfg.LastBase, err = loadSites(opts.lastBasePath)
		if err != nil {
			return err
		}
	}

	var knownGenes map[string]bool
	if opts.knownGenesPath != "" {
		knownGenes, err = loadKnownGenes(opts.knownGenesPath)
		if err != nil {
			return err
		}
		logger.Info("loaded known genes", zap.Int("count", len(knownGenes)))
	}

	var mnvs mnv.Candidates
	if opts.mnvPath != "" {
		mnvs, err = mnv.Load(opts.mnvPath)
		if err != nil {
			return err
		}
	}

	pol := policy.New(
		policy.Default(knownGenes, cfg.Populations, viper.GetFloat64("maf_limit")),
		cfg.Populations,
	)
	pol.SetLogger(logger)
	pol.SetDebug(cfg.Debug)

	pipeline := trio.NewPipeline(cfg, pol, viper.GetFloat64("pp_dnm_threshold"))
	pipeline.SetLogger(logger)

	out := os.Stdout
	if opts.outputPath != "" {
		out, err = os.Create(opts.outputPath)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer out.Close()
	}
	report := output.NewTabWriter(out, cfg.Populations)
	if err := report.WriteHeader(); err != nil {
		return fmt.Errorf("write report header: %w", err)
	}

	var db *store.Store
	if opts.dbPath != "" {
		db, err = store.Open(opts.dbPath)
		if err != nil {
			return err
		}
		defer db.Close()
	}

	jobs := make(chan trio.FamilyJob)
	go func() {
		defer close(jobs)
		for i, fam := range families {
			jobs <- trio.FamilyJob{Seq: i, Family: fam, MNVs: mnvs}
		}
	}()

	results := pipeline.RunBatch(context.Background(), jobs, opts.workers)

	err = trio.CollectOrdered(results, func(r trio.FamilyResult) error {
		if r.Err != nil {
			logger.Warn("family failed",
				zap.String("family", r.Family.ID),
				zap.Error(r.Err))
			return nil
		}
		for _, t := range r.Trios {
			if err := report.Write(r.Family, t); err != nil {
				return fmt.Errorf("write report row: %w", err)
			}
		}
		if db != nil {
			if err := db.WriteCandidates(r.Family, r.Trios, cfg.Populations); err != nil {
				return fmt.Errorf("store candidates: %w", err)
			}
		}
		if opts.exportVCF != "" {
			if err := exportFamilyVCF(opts.exportVCF, r.Family, r.Trios); err != nil {
				return fmt.Errorf("export vcf: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	return report.Flush()
}

// resolveFamilies builds the family list from a ped file or the
// single-family flags.
func resolveFamilies(opts *filterOptions) ([]*family.Family, error) {
	if opts.pedPath != "" {
		return family.LoadFamilies(opts.pedPath)
	}

	if opts.childPath == "" {
		return nil, fmt.Errorf("either --ped or --child is required")
	}

	fam := &family.Family{
		ID: opts.probandID,
		Child: &family.Person{
			ID:       opts.probandID,
			Path:     opts.childPath,
			Sex:      family.ParseSex(opts.sex),
			Affected: true,
		},
	}
	if opts.motherPath != "" {
		fam.Mother = &family.Person{ID: opts.probandID + "_mother", Path: opts.motherPath, Sex: family.Female}
	}
	if opts.fatherPath != "" {
		fam.Father = &family.Person{ID: opts.probandID + "_father", Path: opts.fatherPath, Sex: family.Male}
	}

	return []*family.Family{fam}, nil
}

// exportFamilyVCF writes a family's candidates as a gzipped VCF named
// after the proband, using the proband's own header.
func exportFamilyVCF(dir string, fam *family.Family, trios []*trio.TrioRecord) error {
	parser, err := vcf.NewParser(fam.Child.Path)
	if err != nil {
		return err
	}
	header := parser.Header()
	parser.Close()

	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	path := filepath.Join(dir, fam.Child.ID+".vcf.gz")
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	gz := gzip.NewWriter(f)
	defer gz.Close()

	writer := output.NewVCFWriter(gz, header)
	if err := writer.WriteHeader(); err != nil {
		return err
	}
	for _, t := range trios {
		if err := writer.Write(fam, t); err != nil {
			return err
		}
	}
	return writer.Flush()
}

// loadKnownGenes reads gene symbols, one per line or from the first
// tab-separated column.
func loadKnownGenes(path string) (map[string]bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open known genes: %w", err)
	}
	defer f.Close()

	genes := make(map[string]bool)
	if err := scanColumns(f, 1, func(fields []string) error {
		genes[fields[0]] = true
		return nil
	}); err != nil {
		return nil, fmt.Errorf("read known genes: %w", err)
	}
	return genes, nil
}

// loadSites reads a set of chrom, pos coordinates.
func loadSites(path string) (map[vcf.Site]bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sites file: %w", err)
	}
	defer f.Close()

	sites := make(map[vcf.Site]bool)
	if err := scanColumns(f, 2, func(fields []string) error {
		var pos int64
		if _, err := fmt.Sscanf(fields[1], "%d", &pos); err != nil {
			return fmt.Errorf("invalid position %q", fields[1])
		}
		sites[vcf.Site{Chrom: fields[0], Pos: pos}] = true
		return nil
	}); err != nil {
		return nil, fmt.Errorf("read sites file: %w", err)
	}
	return sites, nil
}

func scanColumns(r io.Reader, minCols int, fn func(fields []string) error) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < minCols {
			continue
		}
		if err := fn(fields); err != nil {
			return err
		}
	}
	return scanner.Err()
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}
