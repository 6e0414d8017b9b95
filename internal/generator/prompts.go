package generator

import (
	"fmt"
	"strings"

	"github.com/couchcryptid/prygl-status-service/internal/adapter/openrouter"
)

// placeholderSummary stands in when the backend returns no answer text at all.
const placeholderSummary = "Could not retrieve summary."

// reportRules is the shared tail of every prompt: the reporting constraints,
// the bilingual layout, and the sentinel line the parser keys on.
const reportRules = `TASK: Report the current ice skating conditions at Brno Reservoir (Brněnská přehrada / Prygl).

RULES:
- Only report information that is explicitly present in the source. Do not speculate or fill gaps.
- Do NOT mention sources, websites, or search results. Only the facts found.
- Do NOT explain what was not found or what sources lacked. Silence is better than padding.
- If ice thickness is known, state it. If the date of the measurement is known, state it. If there are warnings, state them. Otherwise say nothing about those fields.
- Keep the response short. 2-4 sentences maximum.

FORMAT:
Write the report twice: first an English version on a line starting with "EN:", then a Czech version on a line starting with "CS:".

End your response with exactly one of:
SKATING_STATUS: YES
SKATING_STATUS: NO
SKATING_STATUS: UNSURE`

// directPrompt asks the model to summarize strictly from the supplied page text.
func directPrompt(host, today, pageText string) string {
	return fmt.Sprintf(`The following is the current content of %s, the official Brno Reservoir ice conditions website. Today is %s.

%s

Based ONLY on this content, provide the ice skating safety report. %s`, host, today, pageText, reportRules)
}

// searchPrompt directs the model to search the two named sources itself.
func searchPrompt(today string) string {
	return fmt.Sprintf(`Today's date is %s.
%s
PRIMARY SOURCE: Search for the latest content from https://prygl.net and https://www.facebook.com/prygl/`, today, reportRules)
}

// synthesisPrompt pastes already-retrieved citation contents verbatim and
// instructs the model to synthesize without searching again.
func synthesisPrompt(citations []openrouter.Annotation, basePrompt string) string {
	sections := make([]string, 0, len(citations))
	for _, a := range citations {
		sections = append(sections, fmt.Sprintf("Source: %s\nURL: %s\n\n%s",
			a.URLCitation.Title, a.URLCitation.URL, a.URLCitation.Content))
	}

	return fmt.Sprintf(`The following web search results have already been retrieved for you. Do NOT perform any additional searches. Based only on these results, write the ice skating safety report.

SEARCH RESULTS:
%s

---

%s`, strings.Join(sections, "\n\n---\n\n"), basePrompt)
}
