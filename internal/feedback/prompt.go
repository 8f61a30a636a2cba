package feedback

import (
	"fmt"
	"strings"

	"github.com/abhisek/mockprep/internal/questions"
)

const responseFormat = "```json\n" + `{
  "questionFeedback": [
    {
      "id": "<question id>",
      "score": <number from 1 to 10>,
      "feedback": "<detailed feedback on the answer>",
      "strengths": ["<strength>", "..."],
      "areas_to_improve": ["<area>", "..."]
    }
  ],
  "overall": {
    "averageScore": <average of the question scores>,
    "generalFeedback": "<summary of the whole interview>",
    "keyStrengths": ["<strength>", "..."],
    "developmentAreas": ["<area>", "..."]
  }
}` + "\n```"

// buildPrompt embeds every question and answer into one scoring request.
func buildPrompt(jobRole string, qs []questions.Question, answers map[string]string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "I need feedback on the following job interview for a %s position:\n\n", jobRole)
	for i, q := range qs {
		fmt.Fprintf(&b, "Question %d (id: %s): %q\n", i+1, q.ID, q.Text)
		fmt.Fprintf(&b, "Candidate Answer: %q\n\n", strings.TrimSpace(answers[q.ID]))
	}

	b.WriteString("Rate each answer on a scale of 1-10 considering relevance, technical accuracy, ")
	b.WriteString("communication clarity and depth of knowledge. Give specific feedback, strengths ")
	b.WriteString("and areas to improve for every answer, then an overall assessment.\n\n")
	b.WriteString("Echo each question's id exactly as given. Format your response as this JSON structure:\n")
	b.WriteString(responseFormat)
	b.WriteString("\n\nOnly return the JSON object with no additional text.")

	return b.String()
}
