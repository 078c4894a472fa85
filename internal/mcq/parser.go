// Package mcq extracts multiple-choice questions from bot replies formatted as
//
//	**Question 1:** What ...?
//	A) ...
//	B) ...
//	**Answer:** B) ...
//	**Explanation:** ...
//	---
package mcq

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/ashureev/adolai/internal/domain"
)

const blockSeparator = "---"

var (
	questionRe    = regexp.MustCompile(`^\*\*Question \d+:\*\*\s*(.*)$`)
	optionRe      = regexp.MustCompile(`^([A-D])\)\s*(.+)$`)
	answerRe      = regexp.MustCompile(`^\*\*Answer:\*\*\s*([A-D])\)`)
	explanationRe = regexp.MustCompile(`^\*\*Explanation:\*\*\s*(.+)$`)
)

// IsQuiz reports whether text looks like a formatted quiz.
func IsQuiz(text string) bool {
	return strings.Contains(text, "**Question") &&
		strings.Contains(text, "**Answer:") &&
		strings.Contains(text, "**Explanation:")
}

// Parse returns every well-formed question found in text. Blocks without a
// question line followed by at least one option are skipped. Question ids are
// the 1-based position of the block.
func Parse(text string) []domain.Question {
	var questions []domain.Question
	blocks := nonEmptyBlocks(text)
	for i, block := range blocks {
		q, ok := parseBlock(block)
		if !ok {
			continue
		}
		q.ID = strconv.Itoa(i + 1)
		questions = append(questions, q)
	}
	return questions
}

func nonEmptyBlocks(text string) []string {
	var blocks []string
	for _, b := range strings.Split(text, blockSeparator) {
		if strings.TrimSpace(b) != "" {
			blocks = append(blocks, b)
		}
	}
	return blocks
}

type section int

const (
	sectionNone section = iota
	sectionQuestion
	sectionOptions
	sectionAnswered
)

func parseBlock(block string) (domain.Question, bool) {
	var (
		q        domain.Question
		state    = sectionNone
		question []string
	)

	for _, raw := range strings.Split(block, "\n") {
		line := strings.TrimSpace(raw)

		if m := questionRe.FindStringSubmatch(line); m != nil && state == sectionNone {
			state = sectionQuestion
			if m[1] != "" {
				question = append(question, m[1])
			}
			continue
		}
		if m := answerRe.FindStringSubmatch(line); m != nil && state >= sectionOptions {
			q.CorrectAnswer = m[1]
			state = sectionAnswered
			continue
		}
		if m := explanationRe.FindStringSubmatch(line); m != nil && q.Explanation == "" {
			q.Explanation = strings.TrimSpace(m[1])
			continue
		}

		switch state {
		case sectionQuestion, sectionOptions:
			if m := optionRe.FindStringSubmatch(line); m != nil {
				state = sectionOptions
				q.Options = append(q.Options, domain.Option{Label: m[1], Text: strings.TrimSpace(m[2])})
				continue
			}
			if state == sectionQuestion && line != "" {
				question = append(question, line)
			}
		}
	}

	if state < sectionOptions {
		return domain.Question{}, false
	}
	q.Question = strings.TrimSpace(strings.Join(question, "\n"))
	return q, true
}
