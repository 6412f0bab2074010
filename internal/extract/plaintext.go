package extract

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"grape-monitor/internal/models"
)

const (
	defaultTitle      = "Genel Öneri"
	defaultSlug       = "genel_öneri"
	maxSlugLen        = 20
	maxLabelLen       = 60
	plainTextPriority = 3
)

var (
	listMarker = regexp.MustCompile(`^(?:[*\-•+]\s+|\d+[.)]\s*)`)
	boldLabel  = regexp.MustCompile(`^\*\*([^*]+?)(?::\*\*|\*\*\s*:)\s*(.*)$`)
	plainLabel = regexp.MustCompile(`^([^:]+?):\s*(.*)$`)
)

type lineKind int

const (
	plainLine lineKind = iota
	labeledLine
)

// classifiedLine is either labeled (label + remainder) or plain (text).
type classifiedLine struct {
	kind  lineKind
	label string
	text  string
}

// classifyLine recognizes "* Label: text", "1. **Label:** text" and
// "Label: text". Anything else is a plain line carrying the input verbatim.
func classifyLine(line string) classifiedLine {
	plain := classifiedLine{kind: plainLine, text: line}

	body := listMarker.ReplaceAllString(line, "")

	if m := boldLabel.FindStringSubmatch(body); m != nil {
		if label := strings.TrimSpace(m[1]); label != "" {
			return classifiedLine{kind: labeledLine, label: label, text: strings.TrimSpace(m[2])}
		}
	}

	m := plainLabel.FindStringSubmatch(body)
	if m == nil {
		return plain
	}
	label := strings.TrimSpace(strings.Trim(m[1], "*_ "))
	rest := strings.TrimSpace(m[2])
	if !plausibleLabel(label, rest) {
		return plain
	}
	return classifiedLine{kind: labeledLine, label: label, text: rest}
}

func plausibleLabel(label, rest string) bool {
	if label == "" || utf8.RuneCountInString(label) > maxLabelLen {
		return false
	}
	// URLs and clock times are not labels
	if strings.HasPrefix(rest, "//") {
		return false
	}
	last, _ := utf8.DecodeLastRuneInString(label)
	first, _ := utf8.DecodeRuneInString(rest)
	if unicode.IsDigit(last) && unicode.IsDigit(first) {
		return false
	}
	return true
}

type accumulator struct {
	title string
	parts []string
}

func (a *accumulator) record(today models.Date) (models.Recommendation, bool) {
	desc := strings.TrimSpace(strings.Join(a.parts, " "))
	if desc == "" {
		return models.Recommendation{}, false
	}
	return models.Recommendation{
		Category:           slug(a.title),
		Description:        desc,
		Priority:           plainTextPriority,
		ImplementationDate: today,
	}, true
}

// PlainText recovers recommendations from a free-text or bulleted answer.
// Each labeled line opens a new recommendation; unlabeled lines continue the
// open one. Text before the first label becomes a general recommendation.
func PlainText(text string, today models.Date) []models.Recommendation {
	var (
		recs []models.Recommendation
		acc  *accumulator
	)
	flush := func() {
		if acc == nil {
			return
		}
		if rec, ok := acc.record(today); ok {
			recs = append(recs, rec)
		}
		acc = nil
	}

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "```") {
			continue
		}

		c := classifyLine(line)
		switch {
		case c.kind == labeledLine:
			flush()
			acc = &accumulator{title: c.label}
			if c.text != "" {
				acc.parts = append(acc.parts, c.text)
			}
		case acc != nil:
			acc.parts = append(acc.parts, line)
		default:
			acc = &accumulator{title: defaultTitle, parts: []string{line}}
		}
	}
	flush()

	return recs
}

// slug lowercases title, replaces non-alphanumerics with underscores and
// keeps the first 20 characters.
func slug(title string) string {
	var b strings.Builder
	n := 0
	for _, r := range strings.ToLower(strings.TrimSpace(title)) {
		if n == maxSlugLen {
			break
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
		n++
	}
	if b.Len() == 0 {
		return defaultSlug
	}
	return b.String()
}
