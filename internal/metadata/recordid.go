package metadata

import (
	"fmt"
	"os"
	"regexp"

	toml "github.com/pelletier/go-toml/v2"
)

// builtinPrefixes maps the three-character key prefix of a record id to
// its object name. Data objects only: metadata prefixes (users, classes,
// pages, logs) are deliberately absent so the scanner's best-guess id
// lands on the record the transaction worked on.
var builtinPrefixes = map[string]string{
	"001": "Account",
	"003": "Contact",
	"005": "User",
	"006": "Opportunity",
	"00Q": "Lead",
	"00T": "Task",
	"00U": "Event",
	"500": "Case",
	"701": "Campaign",
	"800": "Contract",
	"801": "Order",
	"a0A": "CustomObject",
}

// nonRecordPrefixes are ids the platform stamps on every log that never
// identify the record under change.
var nonRecordPrefixes = map[string]bool{
	"005": true, // User
	"01p": true, // ApexClass
	"01q": true, // ApexTrigger
	"066": true, // ApexPage
	"07L": true, // ApexLog
	"0Ab": true, // Package version
}

var idRe = regexp.MustCompile(`\b[0-9a-zA-Z]{18}\b|\b[0-9a-zA-Z]{15}\b`)

// PrefixTable resolves record-id prefixes, optionally extended with
// custom-object declarations from an OBJECTS.toml file.
type PrefixTable struct {
	prefixes map[string]string
}

// objectsDecl mirrors the OBJECTS.toml schema:
//
//	[prefixes]
//	a0B = "Invoice__c"
type objectsDecl struct {
	Prefixes map[string]string `toml:"prefixes"`
}

// NewPrefixTable returns the built-in table.
func NewPrefixTable() *PrefixTable {
	p := make(map[string]string, len(builtinPrefixes))
	for k, v := range builtinPrefixes {
		p[k] = v
	}
	return &PrefixTable{prefixes: p}
}

// LoadPrefixTable extends the built-in table with declarations from the
// given OBJECTS.toml path. A missing file yields the built-in table; a
// malformed file is an error.
func LoadPrefixTable(path string) (*PrefixTable, error) {
	t := NewPrefixTable()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return t, nil
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var decl objectsDecl
	if err := toml.Unmarshal(data, &decl); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	for prefix, object := range decl.Prefixes {
		t.prefixes[prefix] = object
	}
	return t, nil
}

// ObjectFor returns the object name for a 15/18-character id, or "" when
// the prefix is unknown.
func (t *PrefixTable) ObjectFor(id string) string {
	if len(id) != 15 && len(id) != 18 {
		return ""
	}
	return t.prefixes[id[:3]]
}

// FindRecordID scans lines for the best-guess record id: the first
// 15/18-character token with a known data-object prefix.
func (t *PrefixTable) FindRecordID(lines []string) string {
	for _, line := range lines {
		for _, id := range idRe.FindAllString(line, -1) {
			prefix := id[:3]
			if nonRecordPrefixes[prefix] {
				continue
			}
			if _, ok := t.prefixes[prefix]; ok {
				return id
			}
		}
	}
	return ""
}
