package wiki

import (
	"regexp"
	"strings"

	"trivai/internal/models"
)

// headingRe matches plain-text extract headings such as "== History ==" or "=== Early years ===".
var headingRe = regexp.MustCompile(`^(={2,6})\s*(.*?)\s*={2,6}$`)

// parseExtract splits a plain-text extract into the lead summary and a tree of sections.
// A heading of level n becomes a child of the closest preceding heading with a lower level.
func parseExtract(extract string) (string, []*models.Section) {
	var (
		summary  strings.Builder
		sections []*models.Section
		stack    []*models.Section
		current  *strings.Builder
		bodies   = map[*models.Section]*strings.Builder{}
	)

	for _, line := range strings.Split(extract, "\n") {
		m := headingRe.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			if current == nil {
				summary.WriteString(line)
				summary.WriteByte('\n')
			} else {
				current.WriteString(line)
				current.WriteByte('\n')
			}
			continue
		}

		sec := &models.Section{Title: m[2], Level: len(m[1])}
		current = &strings.Builder{}
		bodies[sec] = current

		for len(stack) > 0 && stack[len(stack)-1].Level >= sec.Level {
			stack = stack[:len(stack)-1]
		}
		if len(stack) == 0 {
			sections = append(sections, sec)
		} else {
			parent := stack[len(stack)-1]
			parent.Sections = append(parent.Sections, sec)
		}
		stack = append(stack, sec)
	}

	for sec, body := range bodies {
		sec.Text = strings.TrimSpace(body.String())
	}
	return strings.TrimSpace(summary.String()), sections
}

// stripHeadings removes heading lines, leaving only prose.
func stripHeadings(extract string) string {
	lines := strings.Split(extract, "\n")
	out := lines[:0]
	for _, line := range lines {
		if headingRe.MatchString(strings.TrimSpace(line)) {
			continue
		}
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
