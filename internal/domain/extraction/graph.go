package extraction

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Text is a string field decoded leniently from model output: numbers and booleans
// keep their literal text, null becomes "". Objects and arrays are rejected.
type Text string

func (t *Text) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*t = ""
		return nil
	}
	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	case '{', '[':
		return fmt.Errorf("expected text, got %s", kindOfJSON(b[0]))
	default:
		*t = Text(string(b))
		return nil
	}
}

func (t Text) String() string { return string(t) }

// Trimmed returns the value without surrounding whitespace.
func (t Text) Trimmed() string { return strings.TrimSpace(string(t)) }

func kindOfJSON(c byte) string {
	if c == '{' {
		return "object"
	}
	return "array"
}

type CandidateProgram struct {
	Title       Text `json:"title" validate:"notblank"`
	University  Text `json:"university" validate:"notblank"`
	Description Text `json:"description"`
	ProgramType Text `json:"program_type"`
	Status      Text `json:"status"`
}

type CandidateDeadline struct {
	ProgramTitle Text `json:"program_title"`
	Title        Text `json:"title" validate:"notblank"`
	Date         Text `json:"date" validate:"notblank,isodate"`
	DeadlineType Text `json:"deadline_type"`
	Description  Text `json:"description"`
}

type CandidatePerson struct {
	ProgramTitle Text `json:"program_title"`
	Name         Text `json:"name" validate:"notblank"`
	Description  Text `json:"description"`
	ProfileURL   Text `json:"profile_url"`
	Role         Text `json:"role"`
}

type CandidateLink struct {
	ProgramTitle Text `json:"program_title"`
	Title        Text `json:"title" validate:"notblank"`
	URL          Text `json:"url" validate:"notblank"`
	Description  Text `json:"description"`
	LinkType     Text `json:"link_type"`
}

// Graph is one extraction batch. Children reference their program by exact title
// because ids do not exist until the program row is inserted.
type Graph struct {
	Programs  []CandidateProgram  `json:"programs"`
	Deadlines []CandidateDeadline `json:"deadlines"`
	People    []CandidatePerson   `json:"people"`
	Links     []CandidateLink     `json:"links"`
}

func (g Graph) Empty() bool {
	return len(g.Programs) == 0 && len(g.Deadlines) == 0 && len(g.People) == 0 && len(g.Links) == 0
}

// normalize replaces nil slices so the graph always serializes four arrays.
func (g *Graph) normalize() {
	if g.Programs == nil {
		g.Programs = []CandidateProgram{}
	}
	if g.Deadlines == nil {
		g.Deadlines = []CandidateDeadline{}
	}
	if g.People == nil {
		g.People = []CandidatePerson{}
	}
	if g.Links == nil {
		g.Links = []CandidateLink{}
	}
}

// ParseGraph decodes completion text into a Graph. Missing arrays are treated as
// empty; anything that is not a JSON object of the expected shape is a
// MalformedResponseError. A single surrounding Markdown code fence is stripped.
func ParseGraph(text string) (Graph, error) {
	const op = "extraction.parse"
	body := stripCodeFence(text)
	if body == "" {
		return Graph{}, MalformedResponseError(op, "empty completion text", nil)
	}
	if body[0] != '{' {
		return Graph{}, MalformedResponseError(op, "completion is not a JSON object", nil)
	}
	var g Graph
	dec := json.NewDecoder(strings.NewReader(body))
	if err := dec.Decode(&g); err != nil {
		return Graph{}, MalformedResponseError(op, "decode completion JSON: "+err.Error(), err)
	}
	if dec.More() {
		return Graph{}, MalformedResponseError(op, "trailing content after JSON object", nil)
	}
	g.normalize()
	return g, nil
}

func stripCodeFence(text string) string {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	// drop the info string, e.g. ```json
	if nl := strings.IndexByte(s, '\n'); nl >= 0 && !strings.Contains(s[:nl], "{") {
		s = s[nl+1:]
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
