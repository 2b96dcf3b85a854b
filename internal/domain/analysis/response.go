package analysis

type responseKind int

const (
	kindUnknown responseKind = iota
	kindStructured
	kindRaw
)

// ModelResponse is what a model adapter hands back: either an already parsed
// JSON object or raw text that still has to be recovered. The zero value is
// neither and is rejected by the retry loop.
type ModelResponse struct {
	kind   responseKind
	object map[string]any
	text   string
}

func Structured(obj map[string]any) ModelResponse {
	return ModelResponse{kind: kindStructured, object: obj}
}

func Raw(text string) ModelResponse {
	return ModelResponse{kind: kindRaw, text: text}
}

// Object returns the parsed object when the response is structured.
func (r ModelResponse) Object() (map[string]any, bool) {
	return r.object, r.kind == kindStructured
}

// Text returns the raw text when the response is unparsed.
func (r ModelResponse) Text() (string, bool) {
	return r.text, r.kind == kindRaw
}

func (r ModelResponse) String() string {
	switch r.kind {
	case kindStructured:
		return "structured"
	case kindRaw:
		return "raw"
	default:
		return "unknown"
	}
}
