package vcf

// Site is a genomic coordinate used for configured site sets and debug
// tracing.
type Site struct {
	Chrom string
	Pos   int64
}

// ConsequenceLastBase is the consequence assigned to variants at the
// conserved last base of an exon, where changes disrupt splicing.
const ConsequenceLastBase = "conserved_exon_terminus_variant"

// Config is the process-wide, read-only parsing configuration shared by
// every record. It replaces mutable class-level state so concurrent
// family processing needs no locking.
type Config struct {
	// ConsequenceFields are the INFO keys that may carry the VEP
	// consequence, in preference order (eg CQ, VCQ).
	ConsequenceFields []string

	// Populations are the INFO keys holding population allele
	// frequencies (eg AFR_AF, DDD_AF, MAX_AF).
	Populations []string

	// LastBase holds conserved last-base-of-exon sites where the
	// consequence is upgraded to loss-of-function severity.
	LastBase map[Site]bool

	// Debug, when set, names a coordinate for which filtering decisions
	// are traced.
	Debug *Site
}

// IsDebug reports whether a coordinate matches the configured debug site.
func (c *Config) IsDebug(chrom string, pos int64) bool {
	if c == nil || c.Debug == nil {
		return false
	}
	return c.Debug.Chrom == chrom && c.Debug.Pos == pos
}

// resolveConsequence makes sure a CQ field is available in the info,
// copying it from whichever configured consequence tag is present, and
// applies the last-base severity upgrade. Records with no consequence
// annotation get an empty CQ entry, which fails consequence membership
// rules rather than bypassing them.
func (c *Config) resolveConsequence(info *Info, chrom string, pos int64) {
	if c == nil {
		return
	}
	for _, tag := range c.ConsequenceFields {
		if tag == "CQ" {
			continue
		}
		if v, ok := info.Field(tag); ok {
			info.Set("CQ", v.Raw)
		}
	}
	if !info.Has("CQ") {
		info.Set("CQ", "")
	}
	if c.LastBase[Site{Chrom: chrom, Pos: pos}] {
		info.Set("CQ", ConsequenceLastBase)
	}
}
