package docs

import (
	"regexp"
	"sort"
	"strings"

	docs "google.golang.org/api/docs/v1"
)

var (
	blockSplitRe = regexp.MustCompile(`\n{2,}`)
	codeBlockRe  = regexp.MustCompile("(?s)^```(\\w*)\\n(.*?)\\n```$")
	listLineRe   = regexp.MustCompile(`^(\s*[*+\-]|\d+\.)`)
	orderedRe    = regexp.MustCompile(`^\s*(\d+)\.\s+(.+)$`)
	unorderedRe  = regexp.MustCompile(`^\s*[*+\-]\s+(.+)$`)
	headingRe    = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)
	boldRe       = regexp.MustCompile(`\*\*(.+?)\*\*|__(.+?)__`)
	italicRe     = regexp.MustCompile(`\*([^*]+)\*|_([^_]+)_`)
	linkRe       = regexp.MustCompile(`\[(.+?)\]\((.+?)\)`)
)

// textLen16 returns the length of s in UTF-16 code units. The Docs API
// measures every index and range in UTF-16 code units, not bytes or runes,
// so astral-plane characters (emoji, rare CJK) count as two.
func textLen16(s string) int64 {
	var n int64
	for _, r := range s {
		n++
		if r > 0xFFFF {
			n++
		}
	}
	return n
}

// requestBuilder accumulates batchUpdate requests while tracking the
// insertion index of the next character.
type requestBuilder struct {
	requests []*docs.Request
	index    int64
}

// insertText appends an insertText request at the current index and advances
// it. Returns the range the text occupies.
func (b *requestBuilder) insertText(text string) (start, end int64) {
	start = b.index
	b.requests = append(b.requests, &docs.Request{
		InsertText: &docs.InsertTextRequest{
			Location: &docs.Location{Index: start},
			Text:     text,
		},
	})
	b.index += textLen16(text)
	return start, b.index
}

// styleText appends an updateTextStyle request for the given range.
func (b *requestBuilder) styleText(start, end int64, style *docs.TextStyle, fields string) {
	b.requests = append(b.requests, &docs.Request{
		UpdateTextStyle: &docs.UpdateTextStyleRequest{
			Range:     &docs.Range{StartIndex: start, EndIndex: end},
			TextStyle: style,
			Fields:    fields,
		},
	})
}

// styleParagraph appends an updateParagraphStyle request for the given range.
func (b *requestBuilder) styleParagraph(start, end int64, style *docs.ParagraphStyle, fields string) {
	b.requests = append(b.requests, &docs.Request{
		UpdateParagraphStyle: &docs.UpdateParagraphStyleRequest{
			Range:          &docs.Range{StartIndex: start, EndIndex: end},
			ParagraphStyle: style,
			Fields:         fields,
		},
	})
}

// bullets appends a createParagraphBullets request for the given range.
func (b *requestBuilder) bullets(start, end int64, preset string) {
	b.requests = append(b.requests, &docs.Request{
		CreateParagraphBullets: &docs.CreateParagraphBulletsRequest{
			Range:        &docs.Range{StartIndex: start, EndIndex: end},
			BulletPreset: preset,
		},
	})
}

// MarkdownToRequests converts Markdown text into Google Docs batchUpdate
// requests that insert the content as styled text starting at index 1.
//
// Supported elements: headings (# through ######), ordered and unordered
// lists, fenced code blocks, bold, italic, and links. Unrecognized syntax is
// inserted verbatim. Requests must be applied in order: each insertText
// assumes all preceding inserts have already shifted the document.
func MarkdownToRequests(markdown string) []*docs.Request {
	if strings.TrimSpace(markdown) == "" {
		return nil
	}

	b := &requestBuilder{index: 1}

	for _, block := range blockSplitRe.Split(markdown, -1) {
		if m := codeBlockRe.FindStringSubmatch(block); m != nil {
			b.appendCodeBlock(m[2])
			continue
		}

		lines := strings.Split(block, "\n")
		if isListBlock(lines) {
			b.appendListBlock(lines)
			continue
		}

		for _, line := range lines {
			b.appendLine(line)
		}

		// Blank line between blocks.
		b.insertText("\n")
	}

	return b.requests
}

// appendCodeBlock inserts the body of a fenced code block in a monospace
// font over a light grey background.
func (b *requestBuilder) appendCodeBlock(code string) {
	start, _ := b.insertText(code + "\n\n")
	b.styleText(start, start+textLen16(code), &docs.TextStyle{
		WeightedFontFamily: &docs.WeightedFontFamily{FontFamily: "Consolas"},
		BackgroundColor: &docs.OptionalColor{
			Color: &docs.Color{
				RgbColor: &docs.RgbColor{Red: 0.95, Green: 0.95, Blue: 0.95},
			},
		},
	}, "weightedFontFamily,backgroundColor")
}

// isListBlock reports whether every non-blank line looks like a list item.
func isListBlock(lines []string) bool {
	any := false
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if !listLineRe.MatchString(line) {
			return false
		}
		any = true
	}
	return any
}

// appendListBlock inserts a block of list items, marking each item's range
// with the bullet preset matching its marker.
func (b *requestBuilder) appendListBlock(lines []string) {
	for _, line := range lines {
		if m := orderedRe.FindStringSubmatch(line); m != nil {
			text := m[2] + "\n"
			start, end := b.insertText(text)
			// Exclude the trailing newline from the bullet range.
			b.bullets(start, end-1, "NUMBERED_DECIMAL_ALPHA_ROMAN")
			continue
		}
		if m := unorderedRe.FindStringSubmatch(line); m != nil {
			text := m[1] + "\n"
			start, end := b.insertText(text)
			b.bullets(start, end-1, "BULLET_DISC_CIRCLE_SQUARE")
			continue
		}
		// Blank or malformed line inside the block.
		b.insertText(line + "\n")
	}

	// Blank line after the list.
	b.insertText("\n")
}

// appendLine inserts a single non-list line: a heading, a formatted
// paragraph line, or a blank line.
func (b *requestBuilder) appendLine(line string) {
	if strings.TrimSpace(line) == "" {
		b.insertText("\n")
		return
	}

	if m := headingRe.FindStringSubmatch(line); m != nil {
		level := len(m[1])
		start, end := b.insertText(m[2] + "\n")
		b.styleParagraph(start, end, &docs.ParagraphStyle{
			NamedStyleType: headingStyleType(level),
		}, "namedStyleType")
		return
	}

	for _, part := range splitInline(line) {
		start, end := b.insertText(part.text)
		switch part.kind {
		case spanBold:
			b.styleText(start, end, &docs.TextStyle{Bold: true}, "bold")
		case spanItalic:
			b.styleText(start, end, &docs.TextStyle{Italic: true}, "italic")
		case spanLink:
			b.styleText(start, end, &docs.TextStyle{
				Link: &docs.Link{Url: part.url},
			}, "link")
		}
	}
	b.insertText("\n")
}

func headingStyleType(level int) string {
	switch level {
	case 1:
		return "HEADING_1"
	case 2:
		return "HEADING_2"
	case 3:
		return "HEADING_3"
	case 4:
		return "HEADING_4"
	case 5:
		return "HEADING_5"
	}
	return "HEADING_6"
}

type spanKind int

const (
	spanNormal spanKind = iota
	spanBold
	spanItalic
	spanLink
)

// inlineSpan is a piece of a line with one formatting applied. Offsets are
// byte positions in the source line and are only used for ordering and
// overlap checks.
type inlineSpan struct {
	start, end int
	text       string
	url        string
	kind       spanKind
}

// splitInline breaks a line into normal and formatted parts. Overlapping
// matches are resolved in favor of the earliest one, so bold markers win
// over the italic match nested inside them.
func splitInline(line string) []inlineSpan {
	var spans []inlineSpan

	for _, m := range boldRe.FindAllStringSubmatchIndex(line, -1) {
		spans = append(spans, inlineSpan{
			start: m[0], end: m[1],
			text: submatch(line, m, 1, 2),
			kind: spanBold,
		})
	}
	for _, m := range italicRe.FindAllStringSubmatchIndex(line, -1) {
		spans = append(spans, inlineSpan{
			start: m[0], end: m[1],
			text: submatch(line, m, 1, 2),
			kind: spanItalic,
		})
	}
	for _, m := range linkRe.FindAllStringSubmatchIndex(line, -1) {
		spans = append(spans, inlineSpan{
			start: m[0], end: m[1],
			text: line[m[2]:m[3]],
			url:  line[m[4]:m[5]],
			kind: spanLink,
		})
	}

	sort.SliceStable(spans, func(i, j int) bool { return spans[i].start < spans[j].start })

	kept := spans[:0]
	lastEnd := 0
	for _, s := range spans {
		if len(kept) > 0 && s.start < lastEnd {
			continue
		}
		kept = append(kept, s)
		lastEnd = s.end
	}

	var parts []inlineSpan
	pos := 0
	for _, s := range kept {
		if s.start > pos {
			parts = append(parts, inlineSpan{text: line[pos:s.start], kind: spanNormal})
		}
		parts = append(parts, s)
		pos = s.end
	}
	if pos < len(line) {
		parts = append(parts, inlineSpan{text: line[pos:], kind: spanNormal})
	}
	if len(parts) == 0 {
		parts = append(parts, inlineSpan{text: line, kind: spanNormal})
	}

	return parts
}

// submatch returns the first of two alternated capture groups that matched.
func submatch(s string, m []int, g1, g2 int) string {
	if m[2*g1] >= 0 {
		return s[m[2*g1]:m[2*g1+1]]
	}
	return s[m[2*g2]:m[2*g2+1]]
}
