// Package policy evaluates variant records against declarative filtering
// rules.
package policy

import (
	"strings"

	"go.uber.org/zap"

	"github.com/RuthEberhardt/clinical-filter/internal/vcf"
)

// Condition is the kind of check a rule applies to a field.
type Condition int

// The supported rule conditions.
const (
	// InList passes when the field value is in the allowed set.
	InList Condition = iota
	// SmallerThan passes when the field value, coerced to a number, is
	// less than or equal to the bound. Values that cannot be coerced
	// pass: a missing or malformed annotation never rejects a variant.
	SmallerThan
)

// ConsequenceMissense is the VEP term the compound rule keys on.
const ConsequenceMissense = "missense_variant"

// maxCandidateMAF is the population frequency above which a missense
// variant with no known mutation ID is too common to report.
const maxCandidateMAF = 0.005

// Rule is one field criterion. Rules are evaluated in declaration order
// and the first failure short-circuits.
type Rule struct {
	Field   string
	Cond    Condition
	Allowed map[string]bool // InList only; nil or empty fails closed
	Bound   float64         // SmallerThan only
}

// Policy is a read-only rule set applied to every proband record.
type Policy struct {
	rules       []Rule
	populations []string
	logger      *zap.Logger
	debug       *vcf.Site
}

// New creates a policy from an ordered rule list and the population
// fields used by the compound rule's frequency aggregate.
func New(rules []Rule, populations []string) *Policy {
	return &Policy{
		rules:       rules,
		populations: populations,
		logger:      zap.NewNop(),
	}
}

// SetLogger sets the logger used for debug-coordinate traces.
func (p *Policy) SetLogger(l *zap.Logger) {
	p.logger = l
}

// SetDebug names a coordinate whose filtering decisions are traced.
// Tracing never affects the verdict.
func (p *Policy) SetDebug(site *vcf.Site) {
	p.debug = site
}

// Passes checks whether a record satisfies every rule plus the compound
// missense criteria. Pure over its inputs: evaluating the same record
// twice yields the same verdict.
func (p *Policy) Passes(r *vcf.Record) bool {
	for _, rule := range p.rules {
		value, ok := r.Info.Field(rule.Field)
		if !ok {
			continue
		}
		if !p.passesRule(rule, value) {
			p.trace(r, rule.Field, value.String(), &rule)
			return false
		}
	}

	// A few variants need filtering across multiple requirements; this
	// runs even when every single-field rule passed.
	if !p.passesCompound(r) {
		p.trace(r, "compound:cq=missense,mutation=NA,maf>0.005", "", nil)
		return false
	}

	return true
}

func (p *Policy) passesRule(rule Rule, value vcf.Value) bool {
	switch rule.Cond {
	case InList:
		// an unconfigured allowed set fails closed
		if len(rule.Allowed) == 0 {
			return false
		}
		return rule.Allowed[value.Raw]
	case SmallerThan:
		n, ok := vcf.Number(value.String())
		if !ok {
			return true
		}
		return n <= rule.Bound
	}
	return false
}

// passesCompound applies the cross-field criteria. Missense variants
// with a benign prediction are rejected, as are missense variants with
// no known mutation ID whose maximum population frequency exceeds the
// reporting limit. The benign-prediction check runs first; the order is
// load-bearing when both apply.
func (p *Policy) passesCompound(r *vcf.Record) bool {
	cq := r.Consequence()

	if cq == ConsequenceMissense {
		if pp, ok := r.Info.Field("PolyPhen"); ok && strings.HasPrefix(pp.Raw, "benign") {
			return false
		}
	}

	if r.MutationID() == "NA" && cq == ConsequenceMissense {
		maf, ok := r.Info.MaxAlleleFrequency(p.populations)
		if !ok {
			maf = 0 // no recorded frequency counts as rare
		}
		if maf > maxCandidateMAF {
			return false
		}
	}

	return true
}

// trace logs why a variant at the debug coordinate failed filtering.
func (p *Policy) trace(r *vcf.Record, field, value string, rule *Rule) {
	if p.debug == nil || p.debug.Chrom != r.Chrom || p.debug.Pos != r.Pos {
		return
	}
	fields := []zap.Field{
		zap.String("chrom", r.Chrom),
		zap.Int64("pos", r.Pos),
		zap.String("field", field),
		zap.String("value", value),
	}
	if rule != nil {
		switch rule.Cond {
		case InList:
			fields = append(fields, zap.String("condition", "list"))
		case SmallerThan:
			fields = append(fields,
				zap.String("condition", "smaller_than"),
				zap.Float64("threshold", rule.Bound))
		}
	}
	p.logger.Info("variant failed filtering", fields...)
}
