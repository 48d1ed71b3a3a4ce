// Package family describes the members of a sequenced family.
package family

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// Sex is the recorded sex of a family member.
type Sex string

// Recognised sex codes. PED-style numeric codes are accepted on parsing.
const (
	Male    Sex = "M"
	Female  Sex = "F"
	Unknown Sex = "NA"
)

// ParseSex normalises the sex codes seen in ped files and sample sheets.
func ParseSex(code string) Sex {
	switch strings.ToLower(code) {
	case "m", "male", "1":
		return Male
	case "f", "female", "2":
		return Female
	}
	return Unknown
}

// IsMale reports whether the sex is male.
func (s Sex) IsMale() bool {
	return s == Male
}

// IsFemale reports whether the sex is female.
func (s Sex) IsFemale() bool {
	return s == Female
}

// Person is one sequenced individual.
type Person struct {
	ID       string
	Path     string // path to the individual's VCF
	Sex      Sex
	Affected bool
}

// Family is an affected proband plus optional parents.
type Family struct {
	ID     string
	Child  *Person
	Mother *Person
	Father *Person
}

// HasParents reports whether both parents have variant calls available.
func (f *Family) HasParents() bool {
	return f.Mother != nil && f.Father != nil
}

// pedRow is one parsed line of a ped-like family file.
type pedRow struct {
	famID  string
	id     string
	dadID  string
	momID  string
	person *Person
}

// LoadFamilies reads a ped-like file of families, one member per line:
// family_id, person_id, father_id, mother_id, sex, affected status
// (1=unaffected, 2=affected) and the path to the member's VCF.
// A proband is an affected member; their parents are attached when the
// parent IDs name other rows in the file.
func LoadFamilies(path string) ([]*Family, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open ped file: %w", err)
	}
	defer f.Close()

	var rows []pedRow
	scanner := bufio.NewScanner(f)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 7 {
			return nil, fmt.Errorf("ped line %d: expected 7 columns, found %d", lineNum, len(fields))
		}
		rows = append(rows, pedRow{
			famID: fields[0],
			id:    fields[1],
			dadID: fields[2],
			momID: fields[3],
			person: &Person{
				ID:       fields[1],
				Path:     fields[6],
				Sex:      ParseSex(fields[4]),
				Affected: fields[5] == "2",
			},
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read ped file: %w", err)
	}

	people := make(map[string]*Person, len(rows))
	for _, r := range rows {
		people[r.id] = r.person
	}

	var families []*Family
	for _, r := range rows {
		if !r.person.Affected {
			continue
		}
		fam := &Family{ID: r.famID, Child: r.person}
		if r.dadID != "0" {
			fam.Father = people[r.dadID]
		}
		if r.momID != "0" {
			fam.Mother = people[r.momID]
		}
		families = append(families, fam)
	}

	return families, nil
}
