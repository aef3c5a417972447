// Package markup превращает markdown-подобный ответ модели в HTML или простой текст.
package markup

import (
	"regexp"
	"strings"
)

var (
	headingH3   = regexp.MustCompile(`(?m)^### (.*)$`)
	headingH2   = regexp.MustCompile(`(?m)^## (.*)$`)
	headingH1   = regexp.MustCompile(`(?m)^# (.*)$`)
	boldText    = regexp.MustCompile(`\*\*(.*?)\*\*`)
	bulletLine  = regexp.MustCompile(`(?m)^- (.*)`)
	listSpan    = regexp.MustCompile(`(?s)(<li>.*</li>)`)
	blankLines  = regexp.MustCompile(`\n{2,}`)
	headingMark = regexp.MustCompile(`(?m)^#{1,6}[ \t]*`)
	bulletMark  = regexp.MustCompile(`(?m)^[ \t]*[-*][ \t]+`)
	extraBlanks = regexp.MustCompile(`\n{3,}`)

	blockPrefixes = []string{"<h1>", "<h2>", "<h3>", "<ul>", "<li>"}

	nestedParagraphs = strings.NewReplacer(
		"<p><ul>", "<ul>",
		"</ul></p>", "</ul>",
		"<p><li>", "<li>",
		"</li></p>", "</li>",
	)
)

// ToHTML применяет фиксированную цепочку замен: заголовки, жирный текст, элементы списка,
// обертка списка в <ul>, абзацы. Все элементы списка попадают в один <ul>
// от первого <li> до последнего </li>.
func ToHTML(text string) string {
	s := normalizeNewlines(text)

	s = headingH3.ReplaceAllString(s, "<h3>${1}</h3>")
	s = headingH2.ReplaceAllString(s, "<h2>${1}</h2>")
	s = headingH1.ReplaceAllString(s, "<h1>${1}</h1>")
	s = boldText.ReplaceAllString(s, "<strong>${1}</strong>")
	s = bulletLine.ReplaceAllString(s, "<li>${1}</li>")
	s = listSpan.ReplaceAllString(s, "<ul>${1}</ul>")
	s = blankLines.ReplaceAllString(s, "</p><p>")

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if !hasBlockPrefix(line) {
			lines[i] = "<p>" + line + "</p>"
		}
	}
	s = strings.Join(lines, "\n")

	return nestedParagraphs.Replace(s)
}

// ToPlainText убирает маркеры заголовков и жирного текста, маркеры списка заменяет на "• "
func ToPlainText(text string) string {
	s := normalizeNewlines(text)

	s = boldText.ReplaceAllString(s, "${1}")
	s = headingMark.ReplaceAllString(s, "")
	s = bulletMark.ReplaceAllString(s, "• ")
	s = extraBlanks.ReplaceAllString(s, "\n\n")

	return strings.TrimSpace(s)
}

func hasBlockPrefix(line string) bool {
	for _, p := range blockPrefixes {
		if strings.HasPrefix(line, p) {
			return true
		}
	}
	return false
}

func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}
