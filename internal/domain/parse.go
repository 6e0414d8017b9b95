package domain

import (
	"regexp"
	"strings"
)

var (
	// sentinelRe matches the machine-readable verdict declaration the prompt
	// instructs the model to end with, e.g. "SKATING_STATUS: YES".
	sentinelRe = regexp.MustCompile(`(?i)SKATING_STATUS:\s*(YES|NO|UNSURE)`)

	// enLabelRe / csLabelRe mark the bilingual summary sections. Anchored at
	// line starts so label-like words inside a sentence ("OPEN:", "PICS:")
	// never open a section.
	enLabelRe = regexp.MustCompile(`(?m)^EN:`)
	csLabelRe = regexp.MustCompile(`(?m)^CS:`)
)

// ParsedAnswer holds the structure extracted from raw model output.
type ParsedAnswer struct {
	Primary      string
	Secondary    string
	Verdict      Verdict
	VerdictFound bool
}

// ParseModelOutput extracts the verdict and the bilingual summary bodies from
// unstructured model output. It never fails: absence of any expected structure
// degrades to best-effort text. The verdict is searched on the full raw text
// before any stripping; the first sentinel match wins.
func ParseModelOutput(raw string) ParsedAnswer {
	parsed := ParsedAnswer{}

	if m := sentinelRe.FindStringSubmatch(raw); m != nil {
		parsed.Verdict = Verdict(strings.ToUpper(m[1]))
		parsed.VerdictFound = true
	}

	// The sentinel line must never leak into displayed text.
	cleaned := strings.TrimSpace(sentinelRe.ReplaceAllString(raw, ""))

	primary, secondary := splitSections(cleaned)
	parsed.Primary = primary
	parsed.Secondary = secondary
	return parsed
}

// splitSections extracts the EN section body up to the CS section (or the end)
// and the CS body after it. Without an EN label the whole text serves as both;
// without a CS label the secondary falls back to the primary.
func splitSections(text string) (primary, secondary string) {
	enLoc := enLabelRe.FindStringIndex(text)
	if enLoc == nil {
		primary = strings.TrimSpace(text)
		return primary, primary
	}

	body := text[enLoc[1]:]
	csLoc := csLabelRe.FindStringIndex(body)
	if csLoc == nil {
		primary = strings.TrimSpace(body)
		return primary, primary
	}

	primary = strings.TrimSpace(body[:csLoc[0]])
	secondary = strings.TrimSpace(body[csLoc[1]:])
	if secondary == "" {
		secondary = primary
	}
	return primary, secondary
}
