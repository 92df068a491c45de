package docs

import (
	"fmt"
	"strings"

	docs "google.golang.org/api/docs/v1"
)

// DocumentToMarkdown renders a Google Doc as Markdown. Both legacy documents
// (doc.Body) and tabbed documents (doc.Tabs, introduced Oct 2024) are
// supported; every tab is rendered under its own heading.
func DocumentToMarkdown(doc *docs.Document) (string, error) {
	if doc == nil {
		return "", fmt.Errorf("document is nil")
	}

	r := &markdownRenderer{}

	if doc.Title != "" {
		r.out.WriteString("# " + doc.Title + "\n\n")
	}

	if len(doc.Tabs) > 0 {
		for i, tab := range doc.Tabs {
			r.renderTab(tab, i, 2)
		}
	} else if doc.Body != nil {
		for _, element := range doc.Body.Content {
			r.renderElement(element)
		}
	}

	return r.out.String(), nil
}

// DocumentToPlainText extracts the unformatted text of a Google Doc,
// including all tabs and tables.
func DocumentToPlainText(doc *docs.Document) (string, error) {
	if doc == nil {
		return "", fmt.Errorf("document is nil")
	}

	var out strings.Builder

	if doc.Title != "" {
		out.WriteString(doc.Title + "\n\n")
	}

	if len(doc.Tabs) > 0 {
		for i, tab := range doc.Tabs {
			extractTabText(&out, tab, i, 0)
		}
	} else if doc.Body != nil {
		for _, element := range doc.Body.Content {
			extractElementText(&out, element)
		}
	}

	return out.String(), nil
}

type markdownRenderer struct {
	out strings.Builder
}

// renderTab renders one tab, recursing into child tabs one heading level
// deeper.
func (r *markdownRenderer) renderTab(tab *docs.Tab, position, level int) {
	if level > 6 {
		level = 6
	}

	switch {
	case tab.TabProperties != nil && tab.TabProperties.Title != "":
		fmt.Fprintf(&r.out, "%s Tab: %s\n\n", strings.Repeat("#", level), tab.TabProperties.Title)
	case position > 0 || level > 2:
		fmt.Fprintf(&r.out, "%s Tab %d\n\n", strings.Repeat("#", level), position+1)
	}

	if tab.DocumentTab != nil && tab.DocumentTab.Body != nil {
		for _, element := range tab.DocumentTab.Body.Content {
			r.renderElement(element)
		}
	}

	for i, child := range tab.ChildTabs {
		r.renderTab(child, i, level+1)
	}
}

func (r *markdownRenderer) renderElement(element *docs.StructuralElement) {
	switch {
	case element.Paragraph != nil:
		r.renderParagraph(element.Paragraph)
	case element.Table != nil:
		r.renderTable(element.Table)
	case element.SectionBreak != nil:
		r.out.WriteString("\n---\n\n")
	}
}

// namedStyleHeadingLevel maps a paragraph's named style to a Markdown
// heading level, or 0 for body styles.
func namedStyleHeadingLevel(style *docs.ParagraphStyle) int {
	if style == nil {
		return 0
	}
	var level int
	if n, err := fmt.Sscanf(style.NamedStyleType, "HEADING_%d", &level); n == 1 && err == nil && level >= 1 && level <= 6 {
		return level
	}
	return 0
}

func (r *markdownRenderer) renderParagraph(para *docs.Paragraph) {
	if para == nil || len(para.Elements) == 0 {
		return
	}

	level := namedStyleHeadingLevel(para.ParagraphStyle)
	// All lists come out as bullet lists. Distinguishing numbered lists
	// would require resolving para.Bullet.ListId against doc.Lists.
	isList := para.Bullet != nil

	if level > 0 {
		r.out.WriteString(strings.Repeat("#", level) + " ")
	} else if isList {
		r.out.WriteString("- ")
	}

	for _, elem := range para.Elements {
		switch {
		case elem.TextRun != nil:
			r.renderTextRun(elem.TextRun)
		case elem.InlineObjectElement != nil:
			r.out.WriteString("[inline object]")
		}
	}

	r.out.WriteString("\n")
	if !isList {
		r.out.WriteString("\n")
	}
}

func (r *markdownRenderer) renderTextRun(run *docs.TextRun) {
	if run.Content == "" {
		return
	}

	style := run.TextStyle
	if style == nil {
		r.out.WriteString(run.Content)
		return
	}

	if style.Link != nil && style.Link.Url != "" {
		fmt.Fprintf(&r.out, "[%s](%s)", strings.TrimSpace(run.Content), style.Link.Url)
		return
	}

	if style.WeightedFontFamily != nil && isMonospaceFont(style.WeightedFontFamily.FontFamily) {
		r.out.WriteString("`" + strings.TrimSpace(run.Content) + "`")
		return
	}

	marker := ""
	switch {
	case style.Bold && style.Italic:
		marker = "***"
	case style.Bold:
		marker = "**"
	case style.Italic:
		marker = "*"
	}
	r.out.WriteString(marker + run.Content + marker)
}

// isMonospaceFont reports whether a font family is one the converter should
// render as inline code. Covers the fonts Docs commonly uses for code.
func isMonospaceFont(family string) bool {
	for _, f := range []string{"Courier", "Consolas", "Roboto Mono", "Source Code"} {
		if strings.Contains(family, f) {
			return true
		}
	}
	return false
}

// renderTable emits a Markdown pipe table, treating the first row as the
// header.
func (r *markdownRenderer) renderTable(table *docs.Table) {
	if table == nil || len(table.TableRows) == 0 {
		return
	}

	for rowIndex, row := range table.TableRows {
		r.out.WriteString("|")
		for _, cell := range row.TableCells {
			r.out.WriteString(" " + cellText(cell) + " |")
		}
		r.out.WriteString("\n")

		if rowIndex == 0 {
			r.out.WriteString("|")
			for range row.TableCells {
				r.out.WriteString(" --- |")
			}
			r.out.WriteString("\n")
		}
	}

	r.out.WriteString("\n")
}

// cellText flattens a table cell's paragraphs to a single line.
func cellText(cell *docs.TableCell) string {
	var text strings.Builder
	for _, element := range cell.Content {
		if element.Paragraph == nil {
			continue
		}
		for _, elem := range element.Paragraph.Elements {
			if elem.TextRun != nil {
				text.WriteString(strings.TrimSpace(elem.TextRun.Content))
			}
		}
	}
	return strings.ReplaceAll(text.String(), "\n", " ")
}

func extractTabText(out *strings.Builder, tab *docs.Tab, position, depth int) {
	indent := strings.Repeat("  ", depth)
	if tab.TabProperties != nil && tab.TabProperties.Title != "" {
		fmt.Fprintf(out, "%s=== %s ===\n\n", indent, tab.TabProperties.Title)
	} else if position > 0 || depth > 0 {
		fmt.Fprintf(out, "%s=== Tab %d ===\n\n", indent, position+1)
	}

	if tab.DocumentTab != nil && tab.DocumentTab.Body != nil {
		for _, element := range tab.DocumentTab.Body.Content {
			extractElementText(out, element)
		}
	}

	for i, child := range tab.ChildTabs {
		extractTabText(out, child, i, depth+1)
	}

	out.WriteString("\n")
}

func extractElementText(out *strings.Builder, element *docs.StructuralElement) {
	switch {
	case element.Paragraph != nil:
		extractParagraphText(out, element.Paragraph)
	case element.Table != nil:
		for _, row := range element.Table.TableRows {
			for _, cell := range row.TableCells {
				for _, cellElement := range cell.Content {
					if cellElement.Paragraph != nil {
						extractParagraphText(out, cellElement.Paragraph)
					}
				}
				out.WriteString("\t")
			}
			out.WriteString("\n")
		}
	}
}

func extractParagraphText(out *strings.Builder, para *docs.Paragraph) {
	if para == nil {
		return
	}
	for _, elem := range para.Elements {
		if elem.TextRun != nil {
			out.WriteString(elem.TextRun.Content)
		}
	}
}
