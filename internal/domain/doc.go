// Package domain models the Brno Reservoir ice skating status report.
//
// # Model Output Contract
//
// The generation backend is prompted to answer in a fixed layout so the raw
// completion text can be parsed without an extra structuring call:
//
//	EN: <short English summary, 2-4 sentences>
//	CS: <the same summary in Czech>
//	SKATING_STATUS: YES|NO|UNSURE
//
// The SKATING_STATUS line is the sentinel that carries the machine-readable
// verdict. It is matched case-insensitively anywhere in the raw text (models
// occasionally reorder or inline it) and the first match wins. A missing
// sentinel is not an error: the report defaults to UNSURE.
//
// The EN/CS sections are best-effort. When the CS section is absent the Czech
// summary falls back to the English text; when the EN label is absent entirely
// the whole cleaned response body is used for both. The sentinel line is
// stripped from the extracted bodies so it never leaks into displayed text.
//
// # Cache Payload
//
// CacheEntry is the durable-store payload: the report plus the instant it was
// generated. An entry is servable while its age stays under the freshness
// window (25 hours, see the cache package). Entries are superseded by the next
// successful generation, never mutated.
package domain
