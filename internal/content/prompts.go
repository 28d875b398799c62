package content

import (
	"fmt"
	"strings"
)

// Prompt builders for each artifact kind. Every prompt demands valid JSON
// matching the corresponding schema in schema.go; the system instructions
// live alongside in the generator.

func learningPathPrompt(topic string, level Level, priorKnowledge string) string {
	knowledge := "User is a complete beginner."
	if priorKnowledge != "" {
		knowledge = "User's prior knowledge: " + priorKnowledge
	}

	return fmt.Sprintf(`Generate a comprehensive learning path for the topic: %q at %s level.

%s

Create a structured learning path with the following format (respond in valid JSON only):

{
  "title": "Learning Path Title",
  "description": "Brief description of what the learner will achieve",
  "topic": %q,
  "level": %q,
  "estimated_hours": number,
  "prerequisites": ["prerequisite1", "prerequisite2"],
  "key_concepts": ["concept1", "concept2", "concept3"],
  "milestones": [
    {
      "level": "beginner",
      "concepts": ["concept1", "concept2"],
      "estimated_time": "X hours",
      "prerequisites": [],
      "outcomes": ["outcome1", "outcome2"]
    },
    {
      "level": "intermediate",
      "concepts": ["concept3", "concept4"],
      "estimated_time": "X hours",
      "prerequisites": ["concept1", "concept2"],
      "outcomes": ["outcome3", "outcome4"]
    },
    {
      "level": "advanced",
      "concepts": ["concept5", "concept6"],
      "estimated_time": "X hours",
      "prerequisites": ["concept3", "concept4"],
      "outcomes": ["outcome5", "outcome6"]
    },
    {
      "level": "expert",
      "concepts": ["concept7", "concept8"],
      "estimated_time": "X hours",
      "prerequisites": ["concept5", "concept6"],
      "outcomes": ["outcome7", "outcome8"]
    }
  ]
}

Ensure the learning path is progressive, builds on previous concepts, and is appropriate for the %s level. Each milestone's prerequisites must reference concepts introduced in earlier milestones.`,
		topic, level, knowledge, topic, level, level)
}

func lessonPrompt(concept string, level Level, learningStyle, context string) string {
	var extras strings.Builder
	if context != "" {
		fmt.Fprintf(&extras, "Context: %s\n", context)
	}
	if learningStyle != "" {
		fmt.Fprintf(&extras, "Learning style: %s\n", learningStyle)
	}

	return fmt.Sprintf(`Create a comprehensive lesson for the concept: %q at %s level.

%s
Generate a lesson with the following structure (respond in valid JSON only):

{
  "title": "Lesson Title",
  "concept": %q,
  "level": %q,
  "simple_explanation": "A simple, beginner-friendly explanation (2-3 sentences)",
  "deep_explanation": "A detailed, comprehensive explanation (3-5 paragraphs)",
  "real_world_use_cases": ["Use case 1", "Use case 2", "Use case 3"],
  "analogies": ["Analogy 1", "Analogy 2"],
  "visual_models": "Description of visual models or mental frameworks (markdown format)",
  "step_by_step_examples": [
    {"step": 1, "description": "What this step does", "example": "Concrete example or code snippet"},
    {"step": 2, "description": "What this step does", "example": "Concrete example or code snippet"}
  ],
  "common_mistakes": ["Common mistake 1 and how to avoid it", "Common mistake 2 and how to avoid it"],
  "estimated_minutes": number
}

Make the lesson engaging, practical, and appropriate for %s learners. Include concrete examples.`,
		concept, level, extras.String(), concept, level, level)
}

func worksheetPrompt(concept string, level Level, lessonContext string) string {
	context := ""
	if lessonContext != "" {
		context = "Lesson context: " + lessonContext + "\n"
	}

	return fmt.Sprintf(`Create a practice worksheet for the concept: %q at %s level.

%s
Generate a worksheet with diverse question types (respond in valid JSON only):

{
  "title": "Worksheet Title",
  "level": %q,
  "questions": [
    {"id": "q1", "type": "fill_in_blank", "question": "Question text with ___ blank", "correct_answer": "correct answer", "points": 5},
    {"id": "q2", "type": "multiple_choice", "question": "Multiple choice question text", "options": ["Option A", "Option B", "Option C", "Option D"], "correct_answer": 0, "points": 10},
    {"id": "q3", "type": "true_false", "question": "True or False statement", "correct_answer": "true", "points": 5},
    {"id": "q4", "type": "matching", "question": "Match the following:", "options": ["Option A", "Option B", "Option C"], "correct_answer": ["match1", "match2", "match3"], "points": 10},
    {"id": "q5", "type": "scenario", "question": "Scenario-based question that requires application", "correct_answer": "Expected answer or key points", "points": 15},
    {"id": "q6", "type": "short_answer", "question": "Short answer question", "correct_answer": "Key points that should be included", "points": 10},
    {"id": "q7", "type": "applied_challenge", "question": "Practical challenge that requires problem-solving", "correct_answer": "Solution approach or key steps", "points": 20}
  ],
  "answer_key": {"q1": "correct answer", "q2": 0, "q3": "true", "q4": ["match1", "match2", "match3"], "q5": "Expected answer", "q6": "Key points", "q7": "Solution approach"}
}

CRITICAL REQUIREMENTS:
- You MUST generate at least 7 questions.
- Every question MUST have id, type, question, correct_answer and points.
- For matching questions, the options array and correct_answer array MUST have the same length.
- For multiple_choice questions, you MUST provide exactly 4 options and correct_answer as the index 0-3.
- For true_false questions, correct_answer MUST be "true" or "false".
- For fill_in_blank questions, the question text MUST contain a ___ blank marker.
- Every question id must be unique (q1, q2, ...) and the answer_key must include an entry for every question id.`,
		concept, level, context, level)
}

func quizPrompt(concepts []string, level Level, quizType string) string {
	title := "Quiz"
	if quizType == "exam" {
		title = "Exam"
	}

	return fmt.Sprintf(`Create a %s covering these concepts: %s at %s level.

Generate a %s with diverse question types (respond in valid JSON only):

{
  "title": "%s Title",
  "level": %q,
  "type": %q,
  "questions": [
    {"id": "q1", "type": "multiple_choice", "question": "Question text", "options": ["Option A", "Option B", "Option C", "Option D"], "correct_answer": 0, "explanation": "Why this answer is correct", "points": 10},
    {"id": "q2", "type": "true_false", "question": "Statement to evaluate", "correct_answer": "true", "explanation": "Why", "points": 5},
    {"id": "q3", "type": "short_response", "question": "Question requiring a short written answer", "correct_answer": "Key points", "explanation": "What a good answer covers", "points": 10},
    {"id": "q4", "type": "scenario", "question": "Applied scenario question", "correct_answer": "Expected approach", "explanation": "Why", "points": 15}
  ],
  "answer_key": {"q1": 0, "q2": "true", "q3": "Key points", "q4": "Expected approach"},
  "passing_score": number,
  "time_limit_minutes": number
}

CRITICAL REQUIREMENTS:
- You MUST generate at least 10 questions for quizzes and 12 for exams.
- Every question MUST have id, type, question, correct_answer, explanation and points.
- Cover every listed concept with at least one question.
- Ensure every question id is unique and the answer_key includes an entry for every question id.`,
		quizType, strings.Join(concepts, ", "), level, quizType, title, level, quizType)
}

func capstonePrompt(topic string, level Level, concepts []string) string {
	return fmt.Sprintf(`Create a capstone project for the topic %q at %s level, integrating these concepts: %s.

Generate a portfolio-worthy project (respond in valid JSON only):

{
  "title": "Capstone Project Title",
  "level": %q,
  "description": "What the project is and why it matters",
  "instructions": "Step-by-step instructions for completing the project (markdown format)",
  "requirements": ["Requirement 1", "Requirement 2", "Requirement 3"],
  "evaluation_rubric": [
    {
      "criterion": "Criterion name",
      "excellent": "What excellent looks like",
      "good": "What good looks like",
      "satisfactory": "What satisfactory looks like",
      "needs_improvement": "What needs improvement looks like",
      "points": 25
    }
  ],
  "extension_challenges": ["Optional challenge 1", "Optional challenge 2"],
  "estimated_hours": number
}

The project must exercise every listed concept and produce a concrete, demonstrable result.`,
		topic, level, strings.Join(concepts, ", "), level)
}
