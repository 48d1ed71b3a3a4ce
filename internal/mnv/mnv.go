// Package mnv carries multinucleotide variant co-occurrence codes.
// The codes are computed upstream; this package only looks them up while
// records are being constructed.
package mnv

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/RuthEberhardt/clinical-filter/internal/vcf"
)

// Candidates maps a coordinate to its MNV co-occurrence code.
type Candidates map[vcf.Site]string

// Code returns the MNV code for a coordinate, or "" when the site is not
// an MNV candidate.
func (c Candidates) Code(chrom string, pos int64) string {
	return c[vcf.Site{Chrom: chrom, Pos: pos}]
}

// Load reads a tab-separated candidates file of chrom, pos, code lines.
func Load(path string) (Candidates, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open mnv candidates: %w", err)
	}
	defer f.Close()

	candidates := make(Candidates)
	scanner := bufio.NewScanner(f)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 3 {
			return nil, fmt.Errorf("mnv candidates line %d: expected 3 columns, found %d", lineNum, len(fields))
		}
		pos, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("mnv candidates line %d: invalid position %q", lineNum, fields[1])
		}
		candidates[vcf.Site{Chrom: fields[0], Pos: pos}] = fields[2]
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read mnv candidates: %w", err)
	}

	return candidates, nil
}
