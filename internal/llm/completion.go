package llm

import "encoding/json"

// completion is the provider-neutral view of one SDK response.
type completion struct {
	text      string
	truncated bool
	usage     Usage
	model     string
}

// response turns the completion into a Response. Truncation wins over schema
// errors: a cut-off payload would fail validation anyway.
func (c completion) response(schema *Schema) (*Response, error) {
	content := json.RawMessage(c.text)
	if c.truncated {
		return nil, &ErrMaxTokensExceeded{Content: content}
	}
	if err := validateResponse(schema, content); err != nil {
		return nil, err
	}
	return &Response{
		Content:    content,
		Usage:      c.usage,
		Model:      c.model,
		StopReason: "end",
	}, nil
}

func newUsage(in, out int) Usage {
	return Usage{InputTokens: in, OutputTokens: out, TotalTokens: in + out}
}

// resolveModel maps a friendly model name to a provider model ID. Unknown
// names are passed through so full IDs work too.
func resolveModel(name string, aliases map[string]string) string {
	if id, ok := aliases[name]; ok {
		return id
	}
	return name
}
