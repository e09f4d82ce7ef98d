package selfcheck

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"
)

// XML check types.
const (
	CheckXMLSectionCount = "XML_SECTION_COUNT"
	CheckXMLRefsResolve  = "XML_REFS_RESOLVE"
	CheckXMLIDsUnique    = "XML_IDS_UNIQUE"
)

// countSections is compiled once; the other queries depend on document
// values and are built per call.
var countSections = xpath.MustCompile("count(//section)")

// CheckXML runs structural checks against the XML rendition of a book:
// the section count matches wantSections, every <ref target> points at an
// existing <section id>, and no section ID appears twice in the document.
func CheckXML(xmlData []byte, wantSections int) ([]CheckResult, error) {
	doc, err := xmlquery.Parse(bytes.NewReader(xmlData))
	if err != nil {
		return nil, fmt.Errorf("parse xml rendition: %w", err)
	}

	var results []CheckResult

	count := CheckResult{Check: CheckXMLSectionCount, Label: "xml section count", Pass: true}
	nav := xmlquery.CreateXPathNavigator(doc)
	got := int(countSections.Evaluate(nav).(float64))
	if got != wantSections {
		count.Pass = false
		count.Detail = fmt.Sprintf("document has %d sections, want %d", got, wantSections)
	}
	results = append(results, count)

	ids := make(map[string]int)
	for _, n := range xmlquery.Find(doc, "//section/@id") {
		ids[n.InnerText()]++
	}

	unique := CheckResult{Check: CheckXMLIDsUnique, Label: "xml section IDs unique", Pass: true}
	for id, n := range ids {
		if n > 1 {
			unique.Pass = false
			unique.Detail = fmt.Sprintf("section ID %s appears %d times", id, n)
			break
		}
	}
	results = append(results, unique)

	refs := CheckResult{Check: CheckXMLRefsResolve, Label: "xml references resolve", Pass: true}
	for _, n := range xmlquery.Find(doc, "//ref/@target") {
		target := n.InnerText()
		if _, err := strconv.ParseUint(target, 10, 16); err != nil {
			refs.Pass = false
			refs.Detail = fmt.Sprintf("malformed ref target %q", target)
			break
		}
		if _, ok := ids[target]; !ok {
			refs.Pass = false
			refs.Detail = fmt.Sprintf("ref target %s has no matching section", target)
			break
		}
	}
	results = append(results, refs)

	return results, nil
}
