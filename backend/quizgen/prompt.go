package quizgen

import (
	"fmt"
	"strings"
)

const systemPrompt = `You are an expert English teacher creating personalized quizzes for English learners.

Rules:
- Every question is multiple choice with exactly 4 options and exactly one correct answer.
- The correct_answer must be copied verbatim from the options.
- Provide a clear explanation for every correct answer.
- Reading questions must reference a single shared passage, provided once in the "passage" field of each Reading question. Questions for other topics must not have a passage.
- Do not repeat any question from the "already asked" list.
- Respond with valid JSON only. No prose before or after the JSON.`

var levelDescriptions = map[string]string{
	"beginner":     "basic English concepts, simple grammar, common vocabulary",
	"intermediate": "more complex grammar structures, intermediate vocabulary, context-dependent questions",
	"advanced":     "advanced grammar, nuanced vocabulary, complex sentence structures, idiomatic expressions",
}

// buildUserMessage constructs the generation prompt. topics holds one topic
// assignment per question; the prompt renders them as per-topic counts.
func buildUserMessage(level string, topics []string, numQuestions int, avoid []string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Create %d multiple choice questions for a %s level student.\n", numQuestions, level)
	fmt.Fprintf(&b, "Level focus: %s\n", levelDescriptions[level])
	fmt.Fprintf(&b, "Topics to cover: %s\n", renderTopicMix(topics))

	if containsTopic(topics, "Reading") {
		b.WriteString("\nFor the Reading questions: write one short passage (at least 60 words) and set it as the \"passage\" field on every Reading question. All Reading questions share that same passage.\n")
	}

	b.WriteString("\nAlready asked recently (do not repeat):\n")
	b.WriteString(buildAvoidList(avoid, maxAvoidQuestions))

	fmt.Fprintf(&b, `
Format your response as valid JSON only, with this exact structure:
{
  "questions": [
    {
      "question": "Question text here",
      "options": ["Option A", "Option B", "Option C", "Option D"],
      "correct_answer": "Option A",
      "explanation": "Clear explanation of why this is correct",
      "topic": "Grammar",
      "difficulty": "%s"
    }
  ]
}

All questions must be at %s level. The topic of each question must be one of: %s.
`, level, level, strings.Join(Topics, ", "))

	return b.String()
}

// buildRetryMessage tightens the prompt after a rejected attempt: the model
// sees its own prior output and the specific rejection reason.
func buildRetryMessage(userMsg, priorOutput, reason string) string {
	var b strings.Builder
	b.WriteString(userMsg)
	b.WriteString("\n\nYour previous response was rejected. Reason: ")
	b.WriteString(reason)
	b.WriteString("\n\nPrevious response:\n")
	b.WriteString(truncate(priorOutput, 2000))
	b.WriteString("\n\nProduce a corrected response. Output the JSON object only, nothing else.")
	return b.String()
}

const maxAvoidQuestions = 20

// buildAvoidList formats prior questions for the prompt, keeping only the
// most recent max entries (avoid is ordered newest first). Returns "None"
// when there is nothing to avoid.
func buildAvoidList(avoid []string, max int) string {
	if len(avoid) == 0 {
		return "None"
	}
	if max > 0 && len(avoid) > max {
		avoid = avoid[:max]
	}

	var b strings.Builder
	for i, q := range avoid {
		fmt.Fprintf(&b, "%d. %s\n", i+1, q)
	}
	return strings.TrimRight(b.String(), "\n")
}

// renderTopicMix collapses per-question topic assignments into counted
// form, preserving first-seen order: "Grammar (2 questions), Reading (1 question)".
func renderTopicMix(topics []string) string {
	counts := make(map[string]int)
	var order []string
	for _, t := range topics {
		if counts[t] == 0 {
			order = append(order, t)
		}
		counts[t]++
	}

	parts := make([]string, 0, len(order))
	for _, t := range order {
		label := "questions"
		if counts[t] == 1 {
			label = "question"
		}
		parts = append(parts, fmt.Sprintf("%s (%d %s)", t, counts[t], label))
	}
	return strings.Join(parts, ", ")
}

func containsTopic(topics []string, want string) bool {
	for _, t := range topics {
		if t == want {
			return true
		}
	}
	return false
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}
