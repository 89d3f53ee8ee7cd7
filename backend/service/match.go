package service

import (
	"errors"
	"regexp"
	"sort"
	"strings"

	"github.com/rrb-ragini/AIAP-15-AI-Powered-Contract-Risk-Management/backend/model"
)

// The backend reports clause text, never positions, so every correlation
// between a rendered fragment and a clause is re-derived here by matching.

// minMatchLen is the minimum normalized candidate length considered for a
// substring match. Shorter fragments produce spurious matches.
const minMatchLen = 3

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	punctRe      = regexp.MustCompile(`[^\w\s]`)
)

// Normalize prepares text for fuzzy matching: casefold, strip punctuation,
// collapse whitespace runs.
func Normalize(text string) string {
	s := strings.ToLower(text)
	s = punctRe.ReplaceAllString(s, "")
	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// MatchByLine returns the clause whose clause_id equals the given 1-based
// line number, or nil. This convention only holds when the backend's
// segmentation aligns with line breaks in the rendered text; substring
// matching is the primary correlation path.
func MatchByLine(line int, clauses []model.ClauseResult) *model.ClauseResult {
	for i := range clauses {
		if clauses[i].ClauseID == line {
			return &clauses[i]
		}
	}
	return nil
}

// MatchBySubstring returns the clause whose normalized text contains, or is
// contained by, the normalized candidate. Candidates shorter than
// minMatchLen never match. When several clauses match, the one with the
// longest clause text wins, so short clauses nested inside longer ones do
// not shadow them.
func MatchBySubstring(candidate string, clauses []model.ClauseResult) *model.ClauseResult {
	norm := Normalize(candidate)
	if len(norm) < minMatchLen {
		return nil
	}

	var best *model.ClauseResult
	for i := range clauses {
		clauseNorm := Normalize(clauses[i].ClauseText)
		if clauseNorm == "" {
			continue
		}
		if !strings.Contains(clauseNorm, norm) && !strings.Contains(norm, clauseNorm) {
			continue
		}
		if best == nil || len(clauses[i].ClauseText) > len(best.ClauseText) {
			best = &clauses[i]
		}
	}
	return best
}

// Highlight markers delimit a flagged clause in plain-text renderings.
// Guillemets are stripped by Normalize, so marked-up output never re-matches
// as clause text.
func highlightOpen(level model.RiskLevel) string  { return "«" + string(level) + "»" }
func highlightClose(level model.RiskLevel) string { return "«/" + string(level) + "»" }

type highlightSpan struct {
	start, end int
	level      model.RiskLevel
}

// HighlightOccurrences wraps every occurrence of a flagged clause in the
// document text with risk-level markers. Clauses are applied longest first
// so that a clause textually nested inside another cannot fragment the
// longer clause's span. Whitespace runs in the clause text match any
// whitespace runs in the source, since source formatting may introduce
// line breaks inside a clause. Applying the function to its own output
// changes nothing.
func HighlightOccurrences(text string, clauses []model.ClauseResult) string {
	flagged := make([]model.ClauseResult, 0, len(clauses))
	for i := range clauses {
		if clauses[i].Flagged() {
			flagged = append(flagged, clauses[i])
		}
	}
	if len(flagged) == 0 || text == "" {
		return text
	}

	sort.SliceStable(flagged, func(i, j int) bool {
		return len(flagged[i].ClauseText) > len(flagged[j].ClauseText)
	})

	var spans []highlightSpan
	for i := range flagged {
		pattern, err := clausePattern(flagged[i].ClauseText)
		if err != nil {
			continue
		}
		for _, loc := range pattern.FindAllStringIndex(text, -1) {
			if overlapsAny(spans, loc[0], loc[1]) {
				continue
			}
			if alreadyWrapped(text, loc[0], loc[1], flagged[i].RiskLevel) {
				continue
			}
			spans = append(spans, highlightSpan{start: loc[0], end: loc[1], level: flagged[i].RiskLevel})
		}
	}
	if len(spans) == 0 {
		return text
	}

	sort.Slice(spans, func(i, j int) bool { return spans[i].start < spans[j].start })

	var b strings.Builder
	prev := 0
	for _, sp := range spans {
		b.WriteString(text[prev:sp.start])
		b.WriteString(highlightOpen(sp.level))
		b.WriteString(text[sp.start:sp.end])
		b.WriteString(highlightClose(sp.level))
		prev = sp.end
	}
	b.WriteString(text[prev:])
	return b.String()
}

// clausePattern compiles a clause text into a pattern with all regexp
// specials escaped and whitespace runs generalized to \s+.
func clausePattern(clauseText string) (*regexp.Regexp, error) {
	tokens := strings.Fields(clauseText)
	if len(tokens) == 0 {
		return nil, errors.New("empty clause text")
	}
	for i, tok := range tokens {
		tokens[i] = regexp.QuoteMeta(tok)
	}
	return regexp.Compile(strings.Join(tokens, `\s+`))
}

func overlapsAny(spans []highlightSpan, start, end int) bool {
	for _, sp := range spans {
		if start < sp.end && end > sp.start {
			return true
		}
	}
	return false
}

// alreadyWrapped reports whether text[start:end] is directly enclosed in its
// own highlight markers from a previous application.
func alreadyWrapped(text string, start, end int, level model.RiskLevel) bool {
	openTag := highlightOpen(level)
	closeTag := highlightClose(level)
	return start >= len(openTag) &&
		text[start-len(openTag):start] == openTag &&
		end+len(closeTag) <= len(text) &&
		text[end:end+len(closeTag)] == closeTag
}
