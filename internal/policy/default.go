package policy

// functionalConsequences are the VEP terms considered potentially
// clinically relevant; anything else is filtered out.
var functionalConsequences = []string{
	"transcript_ablation",
	"splice_donor_variant",
	"splice_acceptor_variant",
	"stop_gained",
	"frameshift_variant",
	"stop_lost",
	"start_lost",
	"initiator_codon_variant",
	"transcript_amplification",
	"inframe_insertion",
	"inframe_deletion",
	"missense_variant",
	"protein_altering_variant",
	"coding_sequence_variant",
	"conserved_exon_terminus_variant",
}

// Default builds the standard rule set: the call must have passed the
// upstream caller's filters, carry a functional consequence, lie in a
// known gene (when a gene list is configured) and be rare in every
// population. Rule order matters: cheap categorical checks run before
// the per-population frequency bounds.
func Default(knownGenes map[string]bool, populations []string, mafLimit float64) []Rule {
	rules := []Rule{
		{Field: "FILTER", Cond: InList, Allowed: set("PASS", ".")},
		{Field: "CQ", Cond: InList, Allowed: set(functionalConsequences...)},
	}

	if knownGenes != nil {
		rules = append(rules, Rule{Field: "HGNC", Cond: InList, Allowed: knownGenes})
	}

	for _, pop := range populations {
		rules = append(rules, Rule{Field: pop, Cond: SmallerThan, Bound: mafLimit})
	}

	return rules
}

func set(values ...string) map[string]bool {
	m := make(map[string]bool, len(values))
	for _, v := range values {
		m[v] = true
	}
	return m
}
