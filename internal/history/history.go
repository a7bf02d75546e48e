// Package history renders conversation turns into prompt-ready text.
package history

import (
	"strings"

	"ragchat/internal/domain"
)

// Format renders turns as alternating "Human:" / "AI:" lines, oldest
// first. No turns renders to the empty string.
func Format(turns []domain.Turn) string {
	if len(turns) == 0 {
		return ""
	}
	lines := make([]string, 0, len(turns))
	for _, t := range turns {
		label := "Human"
		if t.Role == domain.RoleAssistant {
			label = "AI"
		}
		lines = append(lines, label+": "+t.Text)
	}
	return strings.Join(lines, "\n")
}

// Window returns the last n turns. n <= 0 disables the cap.
func Window(turns []domain.Turn, n int) []domain.Turn {
	if n <= 0 || len(turns) <= n {
		return turns
	}
	return turns[len(turns)-n:]
}
