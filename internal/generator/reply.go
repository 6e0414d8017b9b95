package generator

import (
	"strings"

	"github.com/couchcryptid/prygl-status-service/internal/adapter/openrouter"
)

// toolCallMarkers are the literal substrings that identify an intermediate
// tool-invocation reply. They depend on exact marker text from one model
// vendor and are a known compatibility risk; keeping them in one place makes a
// vendor change a one-line fix.
var toolCallMarkers = []string{"<minimax:tool_call>", "<search>"}

// isToolCallIntermediate reports whether the reply text is a tool-invocation
// marker rather than a final answer.
func isToolCallIntermediate(content string) bool {
	for _, marker := range toolCallMarkers {
		if strings.Contains(content, marker) {
			return true
		}
	}
	return false
}

type replyKind int

const (
	// replyFinal: the first reply's content is the answer.
	replyFinal replyKind = iota
	// replyNeedsSynthesis: the reply is an intermediate tool invocation whose
	// retrieved citations must be synthesized by a second call.
	replyNeedsSynthesis
)

// firstReply is the classified outcome of the first search-assisted call.
type firstReply struct {
	kind      replyKind
	text      string
	citations []openrouter.Annotation
}

// classifyFirstReply decides between the two fallback-path continuations. Both
// conditions must hold to enter synthesis: the marker sniff alone is not
// enough without citation contents to synthesize from.
func classifyFirstReply(res openrouter.ChatResult) firstReply {
	citations := citationAnnotations(res.Annotations)
	if isToolCallIntermediate(res.Content) && len(citations) > 0 {
		return firstReply{kind: replyNeedsSynthesis, citations: citations}
	}
	return firstReply{kind: replyFinal, text: res.Content}
}

// citationAnnotations filters for url_citation records that carry content.
func citationAnnotations(annotations []openrouter.Annotation) []openrouter.Annotation {
	var citations []openrouter.Annotation
	for _, a := range annotations {
		if a.Type == "url_citation" && a.URLCitation.Content != "" {
			citations = append(citations, a)
		}
	}
	return citations
}
