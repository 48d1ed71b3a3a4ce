package vcf

import (
	"strconv"
	"strings"
)

// Value is a single INFO annotation: either a presence flag or raw text.
// Numeric-looking values stay as text and are coerced lazily via Number,
// so a "." or ".,." frequency never poisons a comparison.
type Value struct {
	Raw  string
	Flag bool
}

// String renders the value the way it appeared in the INFO column.
func (v Value) String() string {
	if v.Flag {
		return "true"
	}
	return v.Raw
}

// Info holds the parsed INFO column of a variant record. Field order is
// preserved so records can be re-serialised for VCF export.
type Info struct {
	keys   []string
	fields map[string]Value
}

// ParseInfo parses a semicolon-separated INFO column. The record's FILTER
// status is folded in under the "FILTER" key, since filtering policies
// treat it as just another field.
func ParseInfo(raw, filter string) Info {
	info := Info{fields: make(map[string]Value)}

	if raw != "" && raw != "." {
		for _, item := range strings.Split(raw, ";") {
			parts := strings.SplitN(item, "=", 2)
			if len(parts) == 2 {
				info.set(parts[0], Value{Raw: parts[1]})
			} else {
				info.set(parts[0], Value{Flag: true})
			}
		}
	}

	info.set("FILTER", Value{Raw: filter})
	return info
}

func (in *Info) set(key string, v Value) {
	if _, ok := in.fields[key]; !ok {
		in.keys = append(in.keys, key)
	}
	in.fields[key] = v
}

// Set stores a field value, appending the key on first use.
func (in *Info) Set(key, raw string) {
	in.set(key, Value{Raw: raw})
}

// Field returns the raw value for a field and whether it is present.
func (in Info) Field(key string) (Value, bool) {
	v, ok := in.fields[key]
	return v, ok
}

// Has reports whether a field is present.
func (in Info) Has(key string) bool {
	_, ok := in.fields[key]
	return ok
}

// String re-serialises the INFO column in its original field order.
// The FILTER entry is omitted since it lives in its own VCF column.
func (in Info) String() string {
	var parts []string
	for _, key := range in.keys {
		if key == "FILTER" {
			continue
		}
		v := in.fields[key]
		if v.Flag {
			parts = append(parts, key)
		} else {
			parts = append(parts, key+"="+v.Raw)
		}
	}
	if len(parts) == 0 {
		return "."
	}
	return strings.Join(parts, ";")
}

// Number coerces a raw annotation value to a float. Values are sometimes
// comma-separated pairs (eg ".,0.639860"); the first parseable entry wins.
// Returns false when nothing parses, which callers treat permissively.
func Number(raw string) (float64, bool) {
	if n, err := strconv.ParseFloat(raw, 64); err == nil {
		return n, true
	}
	for _, part := range strings.Split(raw, ",") {
		if n, err := strconv.ParseFloat(part, 64); err == nil {
			return n, true
		}
	}
	return 0, false
}

// MaxAlleleFrequency returns the largest allele frequency recorded for
// the variant across the given population fields. Unparseable entries
// are skipped. Returns false when no population has a numeric frequency.
func (in Info) MaxAlleleFrequency(populations []string) (float64, bool) {
	max, found := 0.0, false
	for _, key := range populations {
		v, ok := in.fields[key]
		if !ok || v.Flag {
			continue
		}
		n, ok := Number(v.Raw)
		if !ok {
			continue
		}
		if !found || n > max {
			max, found = n, true
		}
	}
	return max, found
}
