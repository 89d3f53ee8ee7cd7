package service

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	lpdf "github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	pdfmodel "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	pdftypes "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/rrb-ragini/AIAP-15-AI-Powered-Contract-Risk-Management/backend/model"
)

// AnnotatePDF produces a copy of a PDF with native highlight annotations
// for every flagged clause, so the highlights survive in any viewer. Two
// separate libraries read the document: one extracts positioned text runs,
// the other injects annotation objects. Each parses its own copy of the
// input bytes; neither shares decoded state with the other.
//
// With no flagged clause in the input the original bytes are returned
// unmodified. A malformed or encrypted document fails the whole operation;
// partial annotation is never attempted.
func AnnotatePDF(src []byte, clauses []model.ClauseResult) ([]byte, error) {
	flagged := make([]model.ClauseResult, 0, len(clauses))
	for i := range clauses {
		if strings.TrimSpace(clauses[i].ClauseText) != "" && clauses[i].RiskLevel.Risky() {
			flagged = append(flagged, clauses[i])
		}
	}
	if len(flagged) == 0 {
		return src, nil
	}

	pages, err := extractTextRuns(append([]byte(nil), src...))
	if err != nil {
		return nil, fmt.Errorf("failed to extract text positions: %w", err)
	}

	annots := make(map[int][]pdfmodel.AnnotationRenderer)
	for _, page := range pages {
		for _, run := range page.runs {
			if !run.withinPage(page.width, page.height) {
				continue
			}
			clause := MatchBySubstring(run.text, flagged)
			if clause == nil {
				continue
			}
			annots[page.number] = append(annots[page.number], newHighlight(run, clause))
		}
	}
	if len(annots) == 0 {
		return src, nil
	}

	var out bytes.Buffer
	reader := bytes.NewReader(append([]byte(nil), src...))
	if err := api.AddAnnotationsMap(reader, &out, annots, nil); err != nil {
		return nil, fmt.Errorf("failed to inject annotations: %w", err)
	}
	return out.Bytes(), nil
}

// textRun is a positioned string fragment from the text-extraction pass.
// Coordinates are PDF page space: origin bottom-left, y increasing upward.
type textRun struct {
	text           string
	x1, y1, x2, y2 float64
}

// withinPage discards runs whose rectangle falls outside the page bounds,
// with tolerance for rounding in the extraction transforms.
func (r textRun) withinPage(width, height float64) bool {
	return r.x1 >= -5 && r.y1 >= -5 && r.x2 <= width+10 && r.y2 <= height+10
}

type pageRuns struct {
	number        int // 1-based
	width, height float64
	runs          []textRun
}

// defaultGlyphHeight stands in when a text item reports no usable font size.
const defaultGlyphHeight = 10

// extractTextRuns reads positioned text from every page, merging per-glyph
// items into row-level runs so the fragments are long enough to correlate
// against clause text.
func extractTextRuns(data []byte) (pages []pageRuns, err error) {
	// The extraction library panics on some malformed documents; turn that
	// into the same error path as a failed parse.
	defer func() {
		if r := recover(); r != nil {
			pages, err = nil, fmt.Errorf("malformed document: %v", r)
		}
	}()

	reader, err := lpdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}

	for n := 1; n <= reader.NumPage(); n++ {
		page := reader.Page(n)
		if page.V.IsNull() {
			continue
		}

		width, height := pageSize(page)
		pr := pageRuns{number: n, width: width, height: height}

		texts := page.Content().Text
		sort.SliceStable(texts, func(i, j int) bool {
			if texts[i].Y != texts[j].Y {
				return texts[i].Y > texts[j].Y // top of page first
			}
			return texts[i].X < texts[j].X
		})

		var current *textRun
		var currentY float64
		for _, item := range texts {
			if strings.TrimSpace(item.S) == "" {
				continue
			}
			h := item.FontSize
			if h <= 0 {
				h = defaultGlyphHeight
			}
			x2 := item.X + item.W
			y2 := item.Y + h

			// Same row: extend the open run.
			if current != nil && approxEqual(item.Y, currentY) {
				if item.X > current.x2+1 {
					current.text += " "
				}
				current.text += item.S
				if x2 > current.x2 {
					current.x2 = x2
				}
				if y2 > current.y2 {
					current.y2 = y2
				}
				continue
			}

			if current != nil {
				pr.runs = append(pr.runs, *current)
			}
			current = &textRun{text: item.S, x1: item.X, y1: item.Y, x2: x2, y2: y2}
			currentY = item.Y
		}
		if current != nil {
			pr.runs = append(pr.runs, *current)
		}
		pages = append(pages, pr)
	}
	return pages, nil
}

func approxEqual(a, b float64) bool {
	const rowTolerance = 2.0
	d := a - b
	return d < rowTolerance && d > -rowTolerance
}

func pageSize(page lpdf.Page) (float64, float64) {
	// US Letter fallback when the media box is absent or inherited oddly.
	width, height := 612.0, 792.0
	box := page.V.Key("MediaBox")
	if box.Kind() == lpdf.Array && box.Len() == 4 {
		width = box.Index(2).Float64() - box.Index(0).Float64()
		height = box.Index(3).Float64() - box.Index(1).Float64()
	}
	return width, height
}

// Annotation colors per risk level, RGB on a 0-1 scale.
var riskColors = map[model.RiskLevel][3]float64{
	model.RiskHigh:   {1, 0.3, 0.3},   // red
	model.RiskMedium: {1, 0.65, 0.1},  // orange
	model.RiskLow:    {0.4, 0.85, 0.4}, // green
}

const (
	annotationAuthor   = "ContractGuard AI"
	annotationOpacity  = 0.5
	maxJustification   = 250
	annotationPrintBit = 4 // render when printed
)

// highlightAnnotation renders one native highlight annotation dict. The
// rectangle is padded by one unit so the marker sits slightly wider than
// the text it covers.
type highlightAnnotation struct {
	x1, y1, x2, y2 float64
	color          [3]float64
	contents       string
}

func newHighlight(run textRun, clause *model.ClauseResult) highlightAnnotation {
	color, ok := riskColors[clause.RiskLevel]
	if !ok {
		color = riskColors[model.RiskLow]
	}

	clauseType := clause.GoldenClauseType
	if clauseType == "" {
		clauseType = "Clause"
	}
	justification := clause.Justification
	if runes := []rune(justification); len(runes) > maxJustification {
		justification = string(runes[:maxJustification])
	}
	contents := fmt.Sprintf("[%s RISK] %s: %s",
		strings.ToUpper(string(clause.RiskLevel)), clauseType, justification)

	const pad = 1
	return highlightAnnotation{
		x1:       run.x1 - pad,
		y1:       run.y1 - pad,
		x2:       run.x2 + pad,
		y2:       run.y2 + pad,
		color:    color,
		contents: contents,
	}
}

func (a highlightAnnotation) RenderDict(xRefTable *pdfmodel.XRefTable, pageIndRef *pdftypes.IndirectRef) (pdftypes.Dict, error) {
	d := pdftypes.Dict(map[string]pdftypes.Object{
		"Type":    pdftypes.Name("Annot"),
		"Subtype": pdftypes.Name("Highlight"),
		"Rect":    pdftypes.NewNumberArray(a.x1, a.y1, a.x2, a.y2),
		// Quad order per the PDF spec: top-left, top-right, bottom-left,
		// bottom-right.
		"QuadPoints": pdftypes.NewNumberArray(
			a.x1, a.y2, a.x2, a.y2,
			a.x1, a.y1, a.x2, a.y1,
		),
		"C":        pdftypes.NewNumberArray(a.color[0], a.color[1], a.color[2]),
		"CA":       pdftypes.Float(annotationOpacity),
		"F":        pdftypes.Integer(annotationPrintBit),
		"P":        *pageIndRef,
		"T":        pdftypes.StringLiteral(pdfEscape(annotationAuthor)),
		"Contents": pdftypes.StringLiteral(pdfEscape(a.contents)),
	})
	return d, nil
}

func (a highlightAnnotation) Type() pdfmodel.AnnotationType { return pdfmodel.AnnHighLight }

func (a highlightAnnotation) RectString() string {
	return fmt.Sprintf("[%.2f %.2f %.2f %.2f]", a.x1, a.y1, a.x2, a.y2)
}

func (a highlightAnnotation) ID() string { return "" }

func (a highlightAnnotation) ContentString() string { return a.contents }

// pdfEscape escapes the characters with meaning inside a PDF literal string.
func pdfEscape(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)
	return r.Replace(s)
}
