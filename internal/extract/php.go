package extract

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/HendryAvila/feature-replicator/internal/model"
	"github.com/HendryAvila/feature-replicator/internal/sqlinfo"
)

// Parameter sources.
const (
	SourceGET     = "GET"
	SourcePOST    = "POST"
	SourceREQUEST = "REQUEST"
	SourceSESSION = "SESSION"
	SourceCOOKIE  = "COOKIE"
	SourceFILES   = "FILES"
)

// Output types for the PHP classifier.
const (
	OutputPDF   = "PDF"
	OutputExcel = "Excel"
	OutputJSON  = "JSON"
	OutputHTML  = "HTML"
)

// OtherBlock groups queries whose tables have no configured block.
const OtherBlock = "other"

const maxStructureKeys = 15

var (
	superglobalParam = regexp.MustCompile(`\$_(GET|POST|REQUEST|SESSION|COOKIE|FILES)\s*\[\s*['"]([^'"]+)['"]\s*\]`)
	requestHelper    = regexp.MustCompile(`\$request->(input|get|query|post|file)\s*\(\s*['"]([^'"]+)['"]`)
	filterInput      = regexp.MustCompile(`\bfilter_input\s*\(\s*INPUT_(GET|POST|COOKIE)\s*,\s*['"]([^'"]+)['"]`)

	dateParam    = regexp.MustCompile(`(?i)fecha|date|desde|hasta`)
	integerParam = regexp.MustCompile(`^[Ii][Dd]$|^id_|_id$|^id[A-Z]|(?i:^cant|^num|qty|count)`)

	formAction = regexp.MustCompile(`(?i)<form[^>]*\baction\s*=\s*['"]([^'"$<]+)['"]`)
)

// PHPParams collects request, session and cookie parameters into the
// structured input buckets. GET and REQUEST go to http_params, POST and
// FILES to form_fields, SESSION and COOKIE to other_sources. meanings
// supplies optional descriptions by parameter name.
func PHPParams(content string, meanings map[string]string) model.Inputs {
	in := model.Inputs{
		Structured:   true,
		HTTPParams:   []model.Input{},
		FormFields:   []model.Input{},
		OtherSources: []model.Input{},
	}
	seen := make(map[string]bool)
	add := func(source, name string) {
		key := source + ":" + name
		if seen[key] {
			return
		}
		seen[key] = true
		p := model.Input{
			Name:        name,
			Type:        paramType(source, name),
			Source:      source,
			Description: lookupMeaning(meanings, name),
		}
		switch source {
		case SourceGET, SourceREQUEST:
			in.HTTPParams = append(in.HTTPParams, p)
		case SourcePOST, SourceFILES:
			in.FormFields = append(in.FormFields, p)
		default:
			in.OtherSources = append(in.OtherSources, p)
		}
	}

	for _, m := range superglobalParam.FindAllStringSubmatch(content, -1) {
		add(m[1], m[2])
	}
	for _, m := range filterInput.FindAllStringSubmatch(content, -1) {
		add(m[1], m[2])
	}
	for _, m := range requestHelper.FindAllStringSubmatch(content, -1) {
		switch m[1] {
		case "post":
			add(SourcePOST, m[2])
		case "file":
			add(SourceFILES, m[2])
		case "query":
			add(SourceGET, m[2])
		default:
			add(SourceREQUEST, m[2])
		}
	}
	return in
}

func lookupMeaning(meanings map[string]string, name string) string {
	if d, ok := meanings[name]; ok {
		return d
	}
	return meanings[strings.ToLower(name)]
}

func paramType(source, name string) string {
	switch {
	case source == SourceFILES:
		return "file"
	case dateParam.MatchString(name):
		return "date"
	case integerParam.MatchString(name):
		return "integer"
	}
	return "string"
}

type outputSignal struct {
	kind        string
	description string
	signals     []*regexp.Regexp
	structure   *regexp.Regexp
}

// Ties are broken by this order.
var outputSignals = []outputSignal{
	{
		kind:        OutputPDF,
		description: "PDF document generated on the server",
		signals: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(?:FPDF|TCPDF|mPDF|Dompdf|Html2Pdf)\b`),
			regexp.MustCompile(`(?i)application/pdf`),
			regexp.MustCompile(`->Output\s*\(`),
		},
		structure: regexp.MustCompile(`->(?:Cell|MultiCell|Write)\s*\([^;]*?['"]([^'"$]{3,})['"]`),
	},
	{
		kind:        OutputExcel,
		description: "Spreadsheet export",
		signals: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(?:PHPExcel|PhpSpreadsheet|Spreadsheet|Xlsx)\b`),
			regexp.MustCompile(`(?i)application/vnd\.(?:ms-excel|openxmlformats)`),
			regexp.MustCompile(`(?i)\bfputcsv\s*\(|text/csv`),
		},
		structure: regexp.MustCompile(`->setCellValue(?:ByColumnAndRow)?\s*\([^,]+,\s*['"]([^'"$]+)['"]`),
	},
	{
		kind:        OutputJSON,
		description: "JSON response",
		signals: []*regexp.Regexp{
			regexp.MustCompile(`\bjson_encode\s*\(`),
			regexp.MustCompile(`(?i)application/json`),
			regexp.MustCompile(`response\(\)->json\s*\(`),
		},
		structure: regexp.MustCompile(`['"](\w+)['"]\s*=>`),
	},
	{
		kind:        OutputHTML,
		description: "HTML page",
		signals: []*regexp.Regexp{
			regexp.MustCompile(`(?i)<(?:html|table|form|div)\b`),
			regexp.MustCompile(`(?i)\becho\s+['"]\s*<`),
		},
		structure: regexp.MustCompile(`(?i)<th[^>]*>\s*([^<]+?)\s*</th>`),
	},
}

// ClassifyOutput picks the output type with the most content signals.
// With no signal at all the page is assumed to render HTML.
func ClassifyOutput(content string) model.Output {
	best := -1
	bestScore := 0
	for i, o := range outputSignals {
		score := 0
		for _, re := range o.signals {
			score += len(re.FindAllStringIndex(content, -1))
		}
		if score > bestScore {
			best, bestScore = i, score
		}
	}
	if best < 0 {
		return model.Output{Type: OutputHTML, Description: "HTML page (no explicit output signals)", Structure: []string{}}
	}
	o := outputSignals[best]
	return model.Output{
		Type:        o.kind,
		Description: o.description,
		Structure:   distinctCaptures(o.structure, content, maxStructureKeys),
	}
}

func distinctCaptures(re *regexp.Regexp, content string, limit int) []string {
	out := []string{}
	seen := make(map[string]bool)
	for _, m := range re.FindAllStringSubmatch(content, -1) {
		v := strings.TrimSpace(m[1])
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
		if len(out) == limit {
			break
		}
	}
	return out
}

// GroupQueryBlocks assigns each analyzed query to a business block: the
// block of its first table found in tableBlocks, else OtherBlock. Blocks
// keep first-appearance order.
func GroupQueryBlocks(infos []model.QueryInfo, tableBlocks map[string]string) []model.CatalogBlock {
	lookup := make(map[string]string, len(tableBlocks))
	for table, block := range tableBlocks {
		lookup[strings.ToLower(table)] = block
	}

	var blocks []model.CatalogBlock
	index := make(map[string]int)
	for _, info := range infos {
		if len(info.Tables) == 0 {
			continue
		}
		name := OtherBlock
		for _, t := range info.Tables {
			if b, ok := lookup[strings.ToLower(unqualified(t))]; ok {
				name = b
				break
			}
			if b, ok := lookup[strings.ToLower(t)]; ok {
				name = b
				break
			}
		}
		i, ok := index[name]
		if !ok {
			desc := name
			if name == OtherBlock {
				desc = "Queries on tables without a configured business block"
			}
			blocks = append(blocks, model.CatalogBlock{Block: name, Description: desc, Tables: []string{}})
			i = len(blocks) - 1
			index[name] = i
		}
		blocks[i].Queries++
		for _, t := range info.Tables {
			if !contains(blocks[i].Tables, t) {
				blocks[i].Tables = append(blocks[i].Tables, t)
			}
		}
	}
	return blocks
}

func unqualified(table string) string {
	if i := strings.LastIndex(table, "."); i >= 0 {
		return table[i+1:]
	}
	return table
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

var (
	numberedComment = regexp.MustCompile(`(?im)^[ \t]*(?://|#|\*)[ \t]*(?:paso|step)?[ \t]*(\d{1,2})[ \t]*[.):\-][ \t]*(.+?)[ \t]*(?:\*/)?$`)
	emailSignal     = regexp.MustCompile(`(?i)\bmail\s*\(|PHPMailer|Swift_Mailer|\bMail::`)
	redirectSignal  = regexp.MustCompile(`(?i)header\s*\(\s*['"]Location:|\bredirect\s*\(`)
	jsonSignal      = regexp.MustCompile(`\bjson_encode\s*\(|response\(\)->json\s*\(`)
)

// ProcessFlow builds the ordered step list: explicit numbered comments,
// one step per query block, then fixed steps for detected side effects.
func ProcessFlow(content string, blocks []model.CatalogBlock, output model.Output) []string {
	var steps []string
	seenNumbered := make(map[string]bool)
	for _, m := range numberedComment.FindAllStringSubmatch(content, -1) {
		text := strings.TrimSpace(m[2])
		if text == "" || seenNumbered[text] {
			continue
		}
		seenNumbered[text] = true
		steps = append(steps, text)
	}

	for _, b := range blocks {
		label := b.Block
		if b.Block == OtherBlock {
			label = "Other data operations"
		}
		steps = append(steps, fmt.Sprintf("%s (%d %s on %s)", label, b.Queries, plural(b.Queries, "query", "queries"), strings.Join(b.Tables, ", ")))
	}

	if output.Type == OutputPDF {
		steps = append(steps, "Generate PDF document")
	}
	if output.Type == OutputExcel {
		steps = append(steps, "Generate spreadsheet export")
	}
	if emailSignal.MatchString(content) {
		steps = append(steps, "Send email notification")
	}
	if jsonSignal.MatchString(content) {
		steps = append(steps, "Return JSON response")
	}
	if redirectSignal.MatchString(content) {
		steps = append(steps, "Redirect the user")
	}

	numbered := make([]string, 0, len(steps))
	for i, s := range steps {
		numbered = append(numbered, fmt.Sprintf("%d. %s", i+1, s))
	}
	return numbered
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

var (
	docBlock       = regexp.MustCompile(`(?s)/\*\*?(.*?)\*/`)
	lineCommentRun = regexp.MustCompile(`(?m)(?:^[ \t]*(?://|#)[^\n]*\n?)+`)
	commentMarks   = regexp.MustCompile(`(?m)^[ \t]*(?:/\*+|\*+/?|//+|#+)[ \t]?`)
	annotationLine = regexp.MustCompile(`(?m)^\s*@\w+.*$`)
)

// minPurposeLen is the shortest comment accepted as a purpose description.
const minPurposeLen = 20

// InferPurpose returns the configured purpose for featureID, else the
// first leading comment of at least minPurposeLen characters, else "".
func InferPurpose(featureID, content string, purposes map[string]string) string {
	if p, ok := purposes[featureID]; ok && p != "" {
		return p
	}

	type candidate struct {
		pos  int
		text string
	}
	var cands []candidate
	for _, loc := range docBlock.FindAllStringSubmatchIndex(content, -1) {
		cands = append(cands, candidate{loc[0], content[loc[2]:loc[3]]})
	}
	for _, loc := range lineCommentRun.FindAllStringIndex(content, -1) {
		cands = append(cands, candidate{loc[0], content[loc[0]:loc[1]]})
	}
	sort.SliceStable(cands, func(i, j int) bool { return cands[i].pos < cands[j].pos })

	for _, c := range cands {
		text := commentMarks.ReplaceAllString(c.text, "")
		text = annotationLine.ReplaceAllString(text, "")
		text = strings.TrimSpace(whitespaceRun.ReplaceAllString(text, " "))
		if len(text) >= minPurposeLen && !numberedComment.MatchString("// "+text) {
			return sqlinfo.Clip(text, 300)
		}
	}
	return ""
}

var actorVocabulary = []struct {
	actor string
	re    *regexp.Regexp
}{
	{"Administrator", regexp.MustCompile(`(?i)admin`)},
	{"User", regexp.MustCompile(`(?i)\b(?:usuario|user|cliente|customer)`)},
	{"Salesperson", regexp.MustCompile(`(?i)\b(?:vendedor|vendedora|salesperson|seller|sales_?rep|ejecutivo)`)},
}

// InferActors tests content against a small actor vocabulary. A feature
// with no actor signal is attributed to a generic user.
func InferActors(content string) []string {
	actors := []string{}
	for _, a := range actorVocabulary {
		if a.re.MatchString(content) {
			actors = append(actors, a.actor)
		}
	}
	if len(actors) == 0 {
		actors = append(actors, "User")
	}
	return actors
}

// EntryPoints lists the entry files followed by distinct form targets.
func EntryPoints(files []string, content string) []string {
	out := append([]string{}, files...)
	for _, m := range formAction.FindAllStringSubmatch(content, -1) {
		target := strings.TrimSpace(m[1])
		if target != "" && !contains(out, target) {
			out = append(out, target)
		}
	}
	return out
}

// ExampleScenarios derives sample invocations from detected inputs.
func ExampleScenarios(in model.Inputs, output model.Output, tables []string, guards int) []model.ExampleScenario {
	params := make(map[string]string)
	for _, bucket := range [][]model.Input{in.HTTPParams, in.FormFields} {
		for _, p := range bucket {
			params[p.Name] = sampleValue(p.Type)
		}
	}

	expected := fmt.Sprintf("Produces %s output", output.Type)
	if len(tables) > 0 {
		expected += " built from " + strings.Join(tables, ", ")
	}
	scenarios := []model.ExampleScenario{{
		Title:    "Successful request with all parameters",
		Inputs:   params,
		Expected: expected,
	}}
	if guards > 0 && len(params) > 0 {
		scenarios = append(scenarios, model.ExampleScenario{
			Title:    "Request missing a required parameter",
			Expected: "Rejected by a validation guard before any data is written",
		})
	}
	return scenarios
}

func sampleValue(typ string) string {
	switch typ {
	case "date":
		return "2024-01-31"
	case "integer":
		return "1"
	case "file":
		return "upload.csv"
	}
	return "example"
}
