package service

import (
	"fmt"
	"strings"

	"docqa/internal/domain"
)

// Markers returned in place of generated text.
const (
	MarkerBlankQuestion = "[Please enter a question.]"
	MarkerBlankPrompt   = "[Please enter a topic or instruction to summarize.]"
	MarkerNoAnswerDoc   = "[Could not determine a relevant PDF for this question]"
	MarkerNoSummaryDoc  = "[Could not find relevant information to summarize. Please try again or refer the website]"
)

// NoDocumentsMarker reports an empty corpus directory.
func NoDocumentsMarker(dir string) string {
	return fmt.Sprintf("[No PDFs found in the '%s' folder.]", dir)
}

func joinContext(chunks []string) string { return strings.Join(chunks, "\n\n") }

func answerTurns(doc, context, question string) []domain.Turn {
	return []domain.Turn{
		{Role: domain.RoleSystem, Content: "You are a precise academic assistant."},
		{Role: domain.RoleUser, Content: fmt.Sprintf(
			"You are answering a question about the PDF titled '%s'.\n"+
				"Use ONLY the context below. If the answer is not present, say so clearly.\n\n"+
				"Context:\n%s\n\nQuestion: %s\n"+
				"Answer concisely and, when helpful, quote short snippets in parentheses.",
			doc, context, question)},
	}
}

func summaryTurns(doc, context, prompt string) []domain.Turn {
	return []domain.Turn{
		{Role: domain.RoleSystem, Content: "You create faithful, high-level summaries of academic/policy PDFs."},
		{Role: domain.RoleUser, Content: fmt.Sprintf(
			"Based on the context snippets from the PDF '%s', write a clean summary with short headings, "+
				"covering the most relevant points to this request: '%s'.\n\nContext:\n%s",
			doc, prompt, context)},
	}
}

func sectionTurns(section string) []domain.Turn {
	return []domain.Turn{
		{Role: domain.RoleSystem, Content: "You are a concise academic summarizer."},
		{Role: domain.RoleUser, Content: "Summarize this section in 3–6 bullet points.\n\n" + section},
	}
}

func unifyTurns(notes string) []domain.Turn {
	return []domain.Turn{
		{Role: domain.RoleSystem, Content: "You write clean, faithful, non-redundant summaries."},
		{Role: domain.RoleUser, Content: "Unify and deduplicate the notes below into a single coherent summary with short headings if useful.\n\n" + notes},
	}
}
