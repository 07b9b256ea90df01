package ideas

import (
	"errors"
	"testing"
)

func TestStripCodeFence(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{name: "fenced", input: "```json\n{\"a\":1}\n```", want: `{"a":1}`},
		{name: "no newline", input: "```json{\"a\":1}```", want: `{"a":1}`},
		{name: "plain", input: "  {\"a\":1}  ", want: `{"a":1}`},
		{name: "bare fence", input: "```\n{\"a\":1}\n```", want: `{"a":1}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := StripCodeFence(tc.input); got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestParseIdeasFenced(t *testing.T) {
	content := "```json\n{\"ideas\":[{\"title\":\"A\",\"description\":\"B\"},{\"title\":\"C\",\"description\":\"D\"}]}\n```"
	got, err := ParseIdeas(content)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0] != (Idea{Title: "A", Description: "B"}) || got[1].Title != "C" {
		t.Fatalf("unexpected ideas: %+v", got)
	}
}

func TestParseIdeasIgnoresExtraFields(t *testing.T) {
	got, err := ParseIdeas(`{"ideas":[{"title":"A","description":"B","score":9}],"note":"x"}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].Description != "B" {
		t.Fatalf("unexpected ideas: %+v", got)
	}
}

func TestParseIdeasEmptyContent(t *testing.T) {
	_, err := ParseIdeas("")
	var genErr *GenerationError
	if !errors.As(err, &genErr) || genErr.Kind != KindEmptyResponse {
		t.Fatalf("expected empty response error, got %v", err)
	}
	if err.Error() != "Empty API response" {
		t.Fatalf("unexpected message: %s", err.Error())
	}
}

func TestParseIdeasFailures(t *testing.T) {
	cases := []struct {
		name    string
		content string
		target  error
		message string
	}{
		{name: "empty ideas", content: `{"ideas":[]}`, target: ErrMissingIdeas, message: "Failed to parse API response: Invalid response format - missing ideas array"},
		{name: "no ideas key", content: `{"items":[1]}`, target: ErrMissingIdeas},
		{name: "ideas not array", content: `{"ideas":"x"}`, target: ErrMissingIdeas},
		{name: "top level array", content: `[{"title":"A","description":"B"}]`, target: ErrMissingIdeas},
		{name: "missing description", content: `{"ideas":[{"title":"A","description":"B"},{"title":"C"}]}`, target: ErrInvalidIdea, message: "Failed to parse API response: Invalid idea format at index 1 - missing required fields"},
		{name: "empty title", content: `{"ideas":[{"title":"","description":"B"}]}`, target: ErrInvalidIdea},
		{name: "null title", content: `{"ideas":[{"title":null,"description":"B"}]}`, target: ErrInvalidIdea},
		{name: "non object entry", content: `{"ideas":["A"]}`, target: ErrInvalidIdea},
		{name: "not json", content: "Here are some ideas", target: ErrMalformedJSON},
		{name: "whitespace only", content: "   ", target: ErrMalformedJSON},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseIdeas(tc.content)
			if !errors.Is(err, tc.target) {
				t.Fatalf("expected %v, got %v", tc.target, err)
			}
			var genErr *GenerationError
			if !errors.As(err, &genErr) || genErr.Kind != KindParse {
				t.Fatalf("expected parse kind, got %v", err)
			}
			if tc.message != "" && err.Error() != tc.message {
				t.Fatalf("unexpected message: %s", err.Error())
			}
		})
	}
}

func TestParseIdeasIndexReported(t *testing.T) {
	_, err := ParseIdeas(`{"ideas":[{"title":"A","description":"B"},{"title":"C","description":"D"},{"description":"E"}]}`)
	var formatErr *IdeaFormatError
	if !errors.As(err, &formatErr) || formatErr.Index != 2 {
		t.Fatalf("expected index 2, got %v", err)
	}
}

func TestParseIdeasWeakTypes(t *testing.T) {
	got, err := ParseIdeas(`{"ideas":[{"title":2024,"description":"B"}]}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got[0].Title != "2024" {
		t.Fatalf("unexpected title: %q", got[0].Title)
	}
}
