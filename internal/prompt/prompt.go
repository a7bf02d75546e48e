// Package prompt provides fixed instruction templates with {field}
// substitution. Templates are validated when built: a required field
// missing from the template text is an error, as is rendering without
// a value for every field the template references.
package prompt

import (
	"fmt"
	"strings"
)

// Template is an immutable prompt template with named fields.
type Template struct {
	text   string
	fields []string
}

// New parses text and verifies it references every required field.
func New(text string, required ...string) (*Template, error) {
	fields := fieldNames(text)
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	for _, r := range required {
		if _, ok := set[r]; !ok {
			return nil, fmt.Errorf("template is missing required field {%s}", r)
		}
	}
	return &Template{text: text, fields: fields}, nil
}

// MustNew is New for package-level template literals.
func MustNew(text string, required ...string) *Template {
	t, err := New(text, required...)
	if err != nil {
		panic(err)
	}
	return t
}

// Render substitutes values for every field the template references.
// A field without a value is an error rather than a malformed prompt.
func (t *Template) Render(values map[string]string) (string, error) {
	out := t.text
	for _, f := range t.fields {
		v, ok := values[f]
		if !ok {
			return "", fmt.Errorf("no value for template field {%s}", f)
		}
		out = strings.ReplaceAll(out, "{"+f+"}", v)
	}
	return out, nil
}

// Fields returns the field names the template references, in order of
// first appearance.
func (t *Template) Fields() []string {
	out := make([]string, len(t.fields))
	copy(out, t.fields)
	return out
}

func fieldNames(text string) []string {
	var out []string
	seen := make(map[string]struct{})
	for i := 0; i < len(text); i++ {
		if text[i] != '{' {
			continue
		}
		end := strings.IndexByte(text[i:], '}')
		if end < 0 {
			break
		}
		name := text[i+1 : i+end]
		i += end
		if name == "" || strings.ContainsAny(name, " \t\n{") {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

// The two fixed templates of the query pipeline.

// Standalone rewrites a follow-up question into a self-contained one.
var Standalone = MustNew(
	`Given some conversation history (if any) and a question, convert the question to a standalone question.
conversation history: {conv_history}
question: {question}
standalone question:`,
	"conv_history", "question",
)

// Answer produces the final grounded answer.
var Answer = MustNew(
	`You are a helpful and enthusiastic support bot. Answer the question based on the context and conversation history. If the answer is not given in the context, find the answer in the conversation history if possible. If you really don't know the answer, say "I'm sorry, I don't know the answer to that." and direct the questioner to email help@stratosphereid.com. Always speak as if you were chatting to a friend.
context: {context}
conversation history: {conv_history}
question: {question}
answer:`,
	"context", "conv_history", "question",
)
