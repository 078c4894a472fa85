package mcq

import (
	"testing"

	"github.com/ashureev/adolai/internal/domain"
	"github.com/google/go-cmp/cmp"
)

const quiz = `Here is a short quiz.

**Question 1:** How many hours of sleep do teenagers need?
A) 4-5 hours
B) 8-10 hours
C) 12-14 hours
D) 6 hours
**Answer:** B) 8-10 hours
**Explanation:** Teens need 8 to 10 hours for healthy growth.

---

**Question 2:** Which food is a good source of calcium?
A) Milk
B) Candy
**Answer:** A) Milk
**Explanation:** Dairy products are rich in calcium.
`

func TestIsQuiz(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{"full quiz", quiz, true},
		{"plain reply", "Drink plenty of water.", false},
		{"missing explanation", "**Question 1:** x\nA) y\n**Answer:** A) y", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsQuiz(tt.text); got != tt.want {
				t.Errorf("IsQuiz() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParse(t *testing.T) {
	want := []domain.Question{
		{
			ID:       "1",
			Question: "How many hours of sleep do teenagers need?",
			Options: []domain.Option{
				{Label: "A", Text: "4-5 hours"},
				{Label: "B", Text: "8-10 hours"},
				{Label: "C", Text: "12-14 hours"},
				{Label: "D", Text: "6 hours"},
			},
			CorrectAnswer: "B",
			Explanation:   "Teens need 8 to 10 hours for healthy growth.",
		},
		{
			ID:       "2",
			Question: "Which food is a good source of calcium?",
			Options: []domain.Option{
				{Label: "A", Text: "Milk"},
				{Label: "B", Text: "Candy"},
			},
			CorrectAnswer: "A",
			Explanation:   "Dairy products are rich in calcium.",
		},
	}

	if diff := cmp.Diff(want, Parse(quiz)); diff != "" {
		t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_SkipsMalformedBlocks(t *testing.T) {
	text := "Intro without a question\n---\n**Question 2:** No options here\n**Answer:** A) x\n---\n**Question 3:** Ok?\nA) yes\nB) no\n"

	got := Parse(text)
	if len(got) != 1 {
		t.Fatalf("got %d questions, want 1: %+v", len(got), got)
	}
	if got[0].ID != "3" || got[0].CorrectAnswer != "" || got[0].Explanation != "" {
		t.Errorf("question = %+v", got[0])
	}
}

func TestParse_MultilineQuestion(t *testing.T) {
	text := "**Question 1:** Read this:\nWhat helps you focus?\nA) Sleep\nB) Soda\n**Answer:** A) Sleep\n**Explanation:** Rest matters."

	got := Parse(text)
	if len(got) != 1 {
		t.Fatalf("got %d questions", len(got))
	}
	if got[0].Question != "Read this:\nWhat helps you focus?" {
		t.Errorf("question = %q", got[0].Question)
	}
}

func TestParse_Empty(t *testing.T) {
	if got := Parse(""); len(got) != 0 {
		t.Errorf("Parse(\"\") = %+v", got)
	}
}
