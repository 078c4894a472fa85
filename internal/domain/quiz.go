package domain

// Option is one labelled answer of a multiple-choice question.
type Option struct {
	Label string `json:"label"`
	Text  string `json:"text"`
}

// Question is a multiple-choice question, either served by the quiz API or
// parsed out of a bot reply.
type Question struct {
	ID            string   `json:"id"`
	Question      string   `json:"question"`
	Topic         string   `json:"topic,omitempty"`
	Options       []Option `json:"options"`
	CorrectAnswer string   `json:"correct_answer,omitempty"`
	Explanation   string   `json:"explanation,omitempty"`
}

// Option returns the option with the given label.
func (q *Question) Option(label string) (Option, bool) {
	for _, o := range q.Options {
		if o.Label == label {
			return o, true
		}
	}
	return Option{}, false
}

// HasAnswer reports whether the correct label is known.
func (q *Question) HasAnswer() bool {
	return q.CorrectAnswer != ""
}

// AttemptResult is the graded outcome of answering a question.
type AttemptResult struct {
	Correct      bool   `json:"correct"`
	CorrectLabel string `json:"correct_label"`
	Explanation  string `json:"explanation"`
}
