package questions

// ReservedID is the score map key holding the overall summary. No question
// may use it.
const ReservedID = "overall"

// Question is one generated interview question.
type Question struct {
	// ID is unique within an interview. Defaults to "q<position>" (1-based)
	// when the model omits it.
	ID string `json:"id"`

	// Text is the question shown to the candidate.
	Text string `json:"question"`
}

// GenerationError is returned for any failure to obtain a usable question
// list: the provider call failed, the output held no JSON, or the JSON did
// not describe a valid list.
type GenerationError struct {
	Err error
}

// Error returns the underlying message unchanged so it can be shown to the
// candidate as is.
func (e *GenerationError) Error() string {
	return e.Err.Error()
}

func (e *GenerationError) Unwrap() error { return e.Err }

// IDs returns the question ids in order.
func IDs(qs []Question) []string {
	ids := make([]string, len(qs))
	for i, q := range qs {
		ids[i] = q.ID
	}
	return ids
}
