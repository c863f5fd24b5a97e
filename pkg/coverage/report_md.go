package coverage

import (
	"fmt"
	"sort"
	"strings"
)

// Markdown renders the report as a Markdown document.
func (r *Report) Markdown() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# Coverage Report `%s`\n\n", r.Status))

	sb.WriteString("## Summary\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| **Score** | %.1f%% |\n", r.Score*100))
	sb.WriteString(fmt.Sprintf("| **Threshold** | %.1f%% |\n", r.Threshold*100))
	sb.WriteString(fmt.Sprintf("| Section Coverage | %.1f%% |\n", r.SectionCoverage*100))
	sb.WriteString(fmt.Sprintf("| Subsection Coverage | %.1f%% |\n", r.SubsectionCoverage*100))
	sb.WriteString(fmt.Sprintf("| Sections | %d |\n", r.Totals.Sections))
	sb.WriteString(fmt.Sprintf("| Subsections | %d |\n", r.Totals.Subsections))
	sb.WriteString(fmt.Sprintf("| Clauses | %d |\n", r.Totals.Clauses))
	sb.WriteString(fmt.Sprintf("| Subclauses | %d |\n", r.Totals.Subclauses))
	sb.WriteString(fmt.Sprintf("| Notes | %d |\n", r.Totals.Notes))
	sb.WriteString("\n")

	if len(r.MissingSections) > 0 {
		sb.WriteString(fmt.Sprintf("**Missing Sections:** %s\n\n", strings.Join(r.MissingSections, ", ")))
	}
	if len(r.ExtraSections) > 0 {
		sb.WriteString(fmt.Sprintf("**Unexpected Sections:** %s\n\n", strings.Join(r.ExtraSections, ", ")))
	}

	if len(r.Sections) > 0 {
		sb.WriteString("## Sections\n\n")
		sb.WriteString("| Code | Subsections | Clauses | Subclauses | Notes | Reference Titles |\n")
		sb.WriteString("|------|-------------|---------|------------|-------|------------------|\n")
		for _, sc := range r.Sections {
			code := sc.Code
			if !sc.Expected {
				code += " *"
			}
			sb.WriteString(fmt.Sprintf("| %s | %d | %d | %d | %d | %d/%d |\n",
				code, sc.Subsections, sc.Clauses, sc.Subclauses, sc.Notes,
				sc.SubsectionsFound, sc.SubsectionsExpected))
		}
		sb.WriteString("\n")
	}

	if len(r.DuplicateRefs) > 0 {
		refs := make([]string, 0, len(r.DuplicateRefs))
		for ref := range r.DuplicateRefs {
			refs = append(refs, ref)
		}
		sort.Strings(refs)

		sb.WriteString("## Duplicate References\n\n")
		sb.WriteString("| Reference | Count |\n")
		sb.WriteString("|-----------|-------|\n")
		for _, ref := range refs {
			sb.WriteString(fmt.Sprintf("| %s | %d |\n", escapeMarkdownTableCell(ref), r.DuplicateRefs[ref]))
		}
		sb.WriteString("\n")
	}

	if len(r.Warnings) > 0 {
		sb.WriteString("## Warnings\n\n")
		for _, w := range r.Warnings {
			sb.WriteString(fmt.Sprintf("- %s\n", w))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func escapeMarkdownTableCell(content string) string {
	return strings.ReplaceAll(content, "|", "\\|")
}
