package questions

import (
	"fmt"
	"strings"
)

// buildPrompt constructs the single user message sent for question
// generation.
func buildPrompt(jobRole string, count int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Generate %d mock interview questions for a %s position.\n\n", count, jobRole)
	b.WriteString("Mix technical, behavioral and situational questions that an interviewer for this role would realistically ask.\n\n")
	b.WriteString("Format your response EXACTLY as a JSON array where each object has an \"id\" and a \"question\" field, like this:\n")
	b.WriteString("```json\n[\n")
	for i := 1; i <= min(count, 2); i++ {
		fmt.Fprintf(&b, "  {\"id\": \"q%d\", \"question\": \"...\"}", i)
		if i < min(count, 2) {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString("]\n```\n\n")
	b.WriteString("Return ONLY the JSON array with no additional text.")

	return b.String()
}
