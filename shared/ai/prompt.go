package ai

import "fmt"

// BuildMentionPrompt renders the extraction instructions for a block of
// newline-separated comments. The reply format must stay in sync with
// ParseMentions.
func BuildMentionPrompt(subject, comments string) string {
	return fmt.Sprintf(`You are a data analyst who specializes in spotting patterns in YouTube comments.
I will give you a list of comments. Your tasks are:
1. Understand the overall context.
2. Detect mentions of %[1]s, even when they are misspelled.
3. Return a list of the most requested or mentioned %[1]s, ordered by frequency (no additional text), in this exact format:
-Name (number of mentions)

Comments:
%[2]s

Return only the list of the most requested or mentioned %[1]s. Put in parentheses how many times each one was mentioned.`,
		subject, comments)
}
