package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Extractor recovers a candidate JSON payload from completion text.
// It returns "" when its pattern does not apply.
type Extractor interface {
	Name() string
	Extract(text string) string
}

type fencedExtractor struct {
	name string
	re   *regexp.Regexp
}

func (f fencedExtractor) Name() string { return f.name }

func (f fencedExtractor) Extract(text string) string {
	m := f.re.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

type rawExtractor struct{}

func (rawExtractor) Name() string { return "raw" }

func (rawExtractor) Extract(text string) string { return strings.TrimSpace(text) }

var (
	// FencedJSON captures the body of the first ```json block.
	FencedJSON Extractor = fencedExtractor{
		name: "fenced-json",
		re:   regexp.MustCompile("```json\\s*([\\s\\S]*?)\\s*```"),
	}

	// FencedBlock captures the body of the first ``` block of any language.
	FencedBlock Extractor = fencedExtractor{
		name: "fenced-block",
		re:   regexp.MustCompile("```\\s*([\\s\\S]*?)\\s*```"),
	}

	// RawBody returns the whole trimmed text.
	RawBody Extractor = rawExtractor{}
)

// DefaultExtractors is the order model output is probed in.
var DefaultExtractors = []Extractor{FencedJSON, FencedBlock, RawBody}

// errNoPayload is wrapped when every extractor comes back empty.
var errNoPayload = errors.New("no JSON payload in model output")

// ExtractJSON runs the default extraction chain over text. The first
// extractor yielding a non-empty capture wins and its capture must parse
// as JSON; otherwise *ErrInvalidResponse is returned.
func ExtractJSON(text string) (json.RawMessage, error) {
	return ExtractJSONWith(text, DefaultExtractors...)
}

// ExtractJSONWith is ExtractJSON with an explicit chain.
func ExtractJSONWith(text string, chain ...Extractor) (json.RawMessage, error) {
	for _, ex := range chain {
		payload := ex.Extract(text)
		if payload == "" {
			continue
		}
		if !json.Valid([]byte(payload)) {
			return nil, &ErrInvalidResponse{
				Content: json.RawMessage(text),
				Err:     fmt.Errorf("%s payload is not valid JSON", ex.Name()),
			}
		}
		return json.RawMessage(payload), nil
	}
	return nil, &ErrInvalidResponse{Content: json.RawMessage(text), Err: errNoPayload}
}

// GenerateJSON sends req and runs the completion text through the
// extraction chain. The Response is returned even when extraction fails so
// callers can log usage.
func GenerateJSON(ctx context.Context, p Provider, req Request) (json.RawMessage, *Response, error) {
	resp, err := p.Generate(ctx, req)
	if err != nil {
		return nil, nil, err
	}
	payload, err := ExtractJSON(resp.Text())
	if err != nil {
		return nil, resp, err
	}
	return payload, resp, nil
}
