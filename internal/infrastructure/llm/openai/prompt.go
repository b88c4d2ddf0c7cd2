package openai

import (
	"fmt"
	"strings"
	"time"

	"github.com/grainlab/corpus-assistant/internal/core/domain"
)

const intentSystemPrompt = `You classify user questions about an agricultural trade association by content category.
You must respond with valid JSON only, no other text.`

func buildIntentPrompt(query string) string {
	return fmt.Sprintf(`Estimate how relevant each content category is for answering this question.
Each value is an independent relevance estimate between 0 and 1; they do not need to sum to 1.
Use "other" for questions outside the association's domain entirely.

Question: %q

Respond with a JSON object with exactly these four numeric keys:
{"policy": 0.0, "news": 0.0, "general": 0.0, "other": 0.0}`, query)
}

const followupSystemPrompt = `You are analyzing whether a user's current query is a follow-up question that refers to a previous topic in the conversation.
Follow-up questions include: asking for more information, additional details, other aspects, or anything else about the same topic.
You must respond with valid JSON only, no other text.`

func buildFollowupPrompt(query string, history []domain.Turn) string {
	return fmt.Sprintf(`Analyze this conversation and the current user query:

Full conversation:
%s

Current user query: %q

Determine:
1. Is this a follow-up question that refers to a previous topic? Treat phrases like "another thing", "what else", "more", "additional" as follow-ups, as well as prompts that do not introduce a new topic.
2. If yes, what was the original topic? Extract only the exact key topic the user mentioned, without adding context.

Respond with valid JSON only:
{"is_followup": true, "original_topic": "key topic or null"}`, formatHistory(history), query)
}

const answerSystemPrompt = `You are a helpful assistant that provides accurate information based on evidence.
Always cite sources using the exact URL or document reference in parentheses, be direct, and be clear about when information was published.`

func buildAnswerPrompt(question string, history []domain.Turn, passages []domain.ScoredPassage) string {
	var contextBuilder strings.Builder
	for _, passage := range passages {
		doc := passage.Document
		switch doc.Category {
		case domain.CategoryNews:
			header := "ARTICLE"
			if published := doc.PublicationTime(); !published.IsZero() {
				header = fmt.Sprintf("ARTICLE (Published: %s)", published.Format("2006-01"))
			}
			contextBuilder.WriteString(header + ":\n")
		case domain.CategoryPolicy:
			contextBuilder.WriteString("POLICY DOCUMENT:\n")
		default:
			contextBuilder.WriteString("PAGE:\n")
		}
		if doc.URL != "" {
			contextBuilder.WriteString("URL: " + doc.URL + "\n")
		}
		contextBuilder.WriteString("CONTENT:\n" + doc.Body + "\n\n")
	}

	historyBlock := "No previous conversation."
	if len(history) > 0 {
		historyBlock = formatHistory(history)
	}

	return fmt.Sprintf(`Current date: %s

Previous conversation:
%s

User question: %s

Evidence:
%s

Rules:
1. Only state information explicitly present in the evidence.
2. Always check publication dates; when asked for recent news, lead with the newest articles and never call older content recent when newer content exists in the evidence.
3. Cite every source you use as: Source: (exact_url_or_document_reference). Never cite sources that do not answer the question.
4. If the evidence does not answer the question, say so briefly without citing or describing the evidence, and suggest where the user might look instead.
5. Consider the conversation history and stay consistent with previous responses.`,
		time.Now().Format("2006-01"), historyBlock, question, contextBuilder.String())
}

func formatHistory(history []domain.Turn) string {
	lines := make([]string, 0, len(history))
	for _, turn := range history {
		text := strings.TrimSpace(turn.Text)
		if text == "" {
			continue
		}
		role := "User"
		if !strings.EqualFold(strings.TrimSpace(turn.Role), "user") {
			role = "Assistant"
		}
		lines = append(lines, role+": "+text)
	}
	return strings.Join(lines, "\n")
}
