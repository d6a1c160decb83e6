package ai

import (
	"regexp"
	"strings"

	"github.com/nouscopy/nouscopy/internal/copygen"
)

const (
	fallbackHook = "Copy adaptada com sucesso"
	fallbackCTA  = "Clique aqui para garantir sua vaga"
)

var (
	hookMarker = regexp.MustCompile(`(?i)GANCHO:\s*`)
	bodyMarker = regexp.MustCompile(`(?i)CORPO:\s*`)
	ctaMarker  = regexp.MustCompile(`(?i)CTA:\s*`)
)

// ParseSections splits a reply formatted as "GANCHO: ... CORPO: ... CTA:
// ..." into a copy. Markers are matched case-insensitively anywhere on a
// line. Continuation lines are joined with a space for the hook and the
// call-to-action and with a blank line for the body. Missing sections fall
// back to a neutral hook, the whole reply as body, and a generic
// call-to-action.
func ParseSections(text string) copygen.Copy {
	var hook, body, cta strings.Builder
	var current *strings.Builder
	sep := " "

	for _, line := range strings.Split(text, "\n") {
		upper := strings.ToUpper(line)
		switch {
		case strings.Contains(upper, "GANCHO:"):
			current, sep = &hook, " "
			hook.Reset()
			hook.WriteString(stripMarker(hookMarker, line))
		case strings.Contains(upper, "CORPO:"):
			current, sep = &body, "\n\n"
			body.Reset()
			body.WriteString(stripMarker(bodyMarker, line))
		case strings.Contains(upper, "CTA:"):
			current, sep = &cta, " "
			cta.Reset()
			cta.WriteString(stripMarker(ctaMarker, line))
		case current != nil && strings.TrimSpace(line) != "":
			current.WriteString(sep)
			current.WriteString(strings.TrimSpace(line))
		}
	}

	cp := copygen.Copy{
		Hook: strings.TrimSpace(hook.String()),
		Body: strings.TrimSpace(body.String()),
		CTA:  strings.TrimSpace(cta.String()),
	}
	if cp.Hook == "" {
		cp.Hook = fallbackHook
	}
	if cp.Body == "" {
		cp.Body = text
	}
	if cp.CTA == "" {
		cp.CTA = fallbackCTA
	}
	return cp
}

// stripMarker removes the first marker from the line.
func stripMarker(re *regexp.Regexp, line string) string {
	loc := re.FindStringIndex(line)
	if loc == nil {
		return strings.TrimSpace(line)
	}
	return strings.TrimSpace(line[:loc[0]] + line[loc[1]:])
}
