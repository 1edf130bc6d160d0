package translator

import "strings"

// Response is the terminal value a tracker resolves with. Rejected and
// canceled submissions resolve with the empty Response; callers distinguish
// outcomes through the tracker status, not the payload.
type Response struct {
	ID       string   `json:"id"`
	Source   string   `json:"source"`
	Segments []string `json:"segments,omitempty"`
	Text     string   `json:"text"`
}

func EmptyResponse() Response {
	return Response{}
}

func newResponse(id, source string, segments []string) Response {
	return Response{
		ID:       id,
		Source:   source,
		Segments: segments,
		Text:     strings.Join(segments, "\n"),
	}
}
