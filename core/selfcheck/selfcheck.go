// Package selfcheck verifies the referential integrity of a generated book:
// unique section IDs, resolvable section references, glossary coverage of
// every word in the text, well-formed headings, and digests that match the
// manifest. It is the machine check behind `ouroboros verify` and the
// --check flag.
package selfcheck

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/FocuswithJustin/Ouroboros/core/book"
	"github.com/FocuswithJustin/Ouroboros/core/digest"
	"github.com/FocuswithJustin/Ouroboros/core/glossary"
	"github.com/FocuswithJustin/Ouroboros/core/lexicon"
)

// Version is the report format version.
const Version = "1.0"

// Status values for reports.
const (
	StatusPass = "pass"
	StatusFail = "fail"
)

// Check types.
const (
	CheckSectionIDsUnique   = "SECTION_IDS_UNIQUE"
	CheckSectionRefsResolve = "SECTION_REFS_RESOLVE"
	CheckGlossaryClosed     = "GLOSSARY_CLOSED"
	CheckWordTargetMet      = "WORD_TARGET_MET"
	CheckHeadingsWellFormed = "HEADINGS_WELL_FORMED"
	CheckDigestsMatch       = "DIGESTS_MATCH"
)

// CheckResult is the outcome of one check.
type CheckResult struct {
	Check  string `json:"check"`
	Label  string `json:"label"`
	Pass   bool   `json:"pass"`
	Detail string `json:"detail,omitempty"`
}

// Report is the outcome of a whole verification run.
type Report struct {
	ReportVersion string        `json:"report_version"`
	CreatedAt     string        `json:"created_at"`
	BookID        string        `json:"book_id"`
	Results       []CheckResult `json:"results"`
	Status        string        `json:"status"`
}

// ToJSON serializes the report with indentation.
func (r *Report) ToJSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// Passed reports whether every check passed.
func (r *Report) Passed() bool {
	return r.Status == StatusPass
}

// sectionRef matches an in-text section reference like "#12345".
var sectionRef = regexp.MustCompile(`#(\d+)`)

// headingLine matches the required first line of every section.
var headingLine = regexp.MustCompile(`^## (.+) \(#(\d+)\)`)

// Run executes the full check plan against a finished book. The manifest may
// be nil when verifying a freshly generated book in memory; digest checks
// are skipped in that case.
func Run(b *book.Book, gl *glossary.Glossary, arena *lexicon.Arena, m *book.Manifest) *Report {
	r := &Report{
		ReportVersion: Version,
		CreatedAt:     time.Now().UTC().Format(time.RFC3339),
		BookID:        b.ID,
	}

	r.add(checkIDsUnique(b))
	r.add(checkRefsResolve(b))
	r.add(checkGlossaryClosed(b, gl, arena))
	if m != nil {
		r.add(checkWordTarget(b, m))
	}
	r.add(checkHeadings(b))
	if m != nil {
		r.add(checkDigests(b, m))
	}

	r.Status = StatusPass
	for _, res := range r.Results {
		if !res.Pass {
			r.Status = StatusFail
			break
		}
	}
	return r
}

func (r *Report) add(res CheckResult) {
	r.Results = append(r.Results, res)
}

func checkIDsUnique(b *book.Book) CheckResult {
	res := CheckResult{Check: CheckSectionIDsUnique, Label: "section IDs are unique", Pass: true}
	seen := make(map[book.ID]struct{})
	for _, s := range b.Sections {
		if _, dup := seen[s.ID]; dup {
			res.Pass = false
			res.Detail = fmt.Sprintf("duplicate section ID %d", s.ID)
			return res
		}
		seen[s.ID] = struct{}{}
	}
	return res
}

func checkRefsResolve(b *book.Book) CheckResult {
	res := CheckResult{Check: CheckSectionRefsResolve, Label: "section references resolve", Pass: true}
	ids := make(map[uint64]struct{})
	for _, s := range b.Sections {
		ids[uint64(s.ID)] = struct{}{}
	}
	for _, s := range b.Sections {
		for _, m := range sectionRef.FindAllStringSubmatch(s.Content.Raw, -1) {
			n, err := strconv.ParseUint(m[1], 10, 64)
			if err != nil {
				continue
			}
			if _, ok := ids[n]; !ok {
				res.Pass = false
				res.Detail = fmt.Sprintf("section #%d references nonexistent section #%d", s.ID, n)
				return res
			}
		}
	}
	return res
}

func checkGlossaryClosed(b *book.Book, gl *glossary.Glossary, arena *lexicon.Arena) CheckResult {
	res := CheckResult{Check: CheckGlossaryClosed, Label: "every word has a glossary key", Pass: true}
	seen := make(map[lexicon.Word]struct{})
	for _, s := range b.Sections {
		for _, w := range s.Content.Words {
			if _, done := seen[w]; done {
				continue
			}
			seen[w] = struct{}{}
			if !gl.Contains(w) {
				res.Pass = false
				res.Detail = fmt.Sprintf("word %q is not in the global glossary", arena.Name(w))
				return res
			}
		}
	}
	return res
}

func checkWordTarget(b *book.Book, m *book.Manifest) CheckResult {
	res := CheckResult{Check: CheckWordTargetMet, Label: "word target met", Pass: true}
	if b.WordCount < m.WordTarget {
		res.Pass = false
		res.Detail = fmt.Sprintf("word count %d below target %d", b.WordCount, m.WordTarget)
	}
	return res
}

func checkHeadings(b *book.Book) CheckResult {
	res := CheckResult{Check: CheckHeadingsWellFormed, Label: "headings are well formed", Pass: true}
	for _, s := range b.Sections {
		m := headingLine.FindStringSubmatch(s.Content.Raw)
		if m == nil {
			res.Pass = false
			res.Detail = fmt.Sprintf("section #%d does not start with a heading", s.ID)
			return res
		}
		if m[1] != s.Kind.Label() {
			res.Pass = false
			res.Detail = fmt.Sprintf("section #%d heading label %q, want %q", s.ID, m[1], s.Kind.Label())
			return res
		}
		if m[2] != strconv.Itoa(int(s.ID)) {
			res.Pass = false
			res.Detail = fmt.Sprintf("section heading ID %s does not match record %d", m[2], s.ID)
			return res
		}
	}
	return res
}

func checkDigests(b *book.Book, m *book.Manifest) CheckResult {
	res := CheckResult{Check: CheckDigestsMatch, Label: "digests match manifest", Pass: true}
	if !digest.Verify([]byte(b.Text()), m.Digests) {
		res.Pass = false
		res.Detail = "canonical text digests do not match manifest"
		return res
	}
	byPos := make(map[int]book.SectionRecord, len(m.Sections))
	for _, rec := range m.Sections {
		byPos[rec.Position] = rec
	}
	for i, s := range b.Sections {
		rec, ok := byPos[i]
		if !ok {
			res.Pass = false
			res.Detail = fmt.Sprintf("manifest has no record for position %d", i)
			return res
		}
		if !digest.Verify([]byte(s.Content.Raw), rec.Digests) {
			res.Pass = false
			res.Detail = fmt.Sprintf("section #%d digests do not match manifest", s.ID)
			return res
		}
	}
	return res
}

// VerifyText checks a canonical text file against its manifest without the
// in-memory book: whole-text digests plus heading shape per recorded
// section. Used by `ouroboros verify` on unpacked output.
func VerifyText(text []byte, m *book.Manifest) *Report {
	r := &Report{
		ReportVersion: Version,
		CreatedAt:     time.Now().UTC().Format(time.RFC3339),
		BookID:        m.BookID,
	}

	res := CheckResult{Check: CheckDigestsMatch, Label: "digests match manifest", Pass: true}
	if !digest.Verify(text, m.Digests) {
		res.Pass = false
		res.Detail = "canonical text digests do not match manifest"
	}
	r.add(res)

	res = CheckResult{Check: CheckHeadingsWellFormed, Label: "headings are well formed", Pass: true}
	bodies := strings.Split(strings.TrimSuffix(string(text), "\n"), "\n\n## ")
	for i := 1; i < len(bodies); i++ {
		bodies[i] = "## " + bodies[i]
	}
	if len(bodies) != len(m.Sections) {
		res.Pass = false
		res.Detail = fmt.Sprintf("text has %d sections, manifest records %d", len(bodies), len(m.Sections))
	} else {
		for i, body := range bodies {
			match := headingLine.FindStringSubmatch(body)
			if match == nil {
				res.Pass = false
				res.Detail = fmt.Sprintf("section %d heading is malformed", i)
				break
			}
			id, err := strconv.ParseUint(match[2], 10, 16)
			if err != nil || uint16(id) != m.Sections[i].ID {
				res.Pass = false
				res.Detail = fmt.Sprintf("section %d heading has ID #%s, manifest records #%d",
					i, match[2], m.Sections[i].ID)
				break
			}
		}
	}
	r.add(res)

	r.Status = StatusPass
	for _, c := range r.Results {
		if !c.Pass {
			r.Status = StatusFail
			break
		}
	}
	return r
}
