package assist

import (
	"strings"
	"time"
)

// DefaultConversationTTL bounds how long a drafting conversation stays
// usable. Stale conversations force the requester to start over rather
// than submit against forgotten context.
const DefaultConversationTTL = 5 * time.Minute

// Conversation fields collected, in the order they are asked.
const (
	FieldUseCase       = "use_case"
	FieldAccountID     = "account_id"
	FieldDurationHours = "duration_hours"
	FieldJustification = "justification"
	FieldConfirm       = "confirm"
)

// fieldOrder drives the question sequence.
var fieldOrder = []string{
	FieldUseCase,
	FieldAccountID,
	FieldDurationHours,
	FieldJustification,
	FieldConfirm,
}

// questions maps each field to the prompt shown for it.
var questions = map[string]string{
	FieldUseCase:       "What do you need to do?",
	FieldAccountID:     "Which account ID is this for?",
	FieldDurationHours: "How many hours of access do you need?",
	FieldJustification: "Why do you need this access? (this is shown to approvers)",
	FieldConfirm:       "Submit this request? (yes/no)",
}

// Prompt is the next question to put to the requester.
type Prompt struct {
	Field    string
	Question string
}

// Conversation is the explicit state of a guided drafting session. It is
// a value: Advance returns the successor state rather than mutating, so
// callers can persist each step and replay is deterministic.
type Conversation struct {
	ID              string
	RequesterEmail  string
	CollectedFields map[string]string
	PendingQuestion string
	StartedAt       time.Time
	ExpiresAt       time.Time
}

// NewConversation starts a drafting session for the requester. The first
// prompt is for the use case.
func NewConversation(id, requesterEmail string, now time.Time) (Conversation, Prompt) {
	conv := Conversation{
		ID:              id,
		RequesterEmail:  requesterEmail,
		CollectedFields: map[string]string{},
		PendingQuestion: fieldOrder[0],
		StartedAt:       now,
		ExpiresAt:       now.Add(DefaultConversationTTL),
	}
	return conv, Prompt{Field: fieldOrder[0], Question: questions[fieldOrder[0]]}
}

// Expired reports whether the conversation has lapsed.
func (c Conversation) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

// Complete reports whether every field has been collected.
func (c Conversation) Complete() bool {
	for _, field := range fieldOrder {
		if _, ok := c.CollectedFields[field]; !ok {
			return false
		}
	}
	return true
}

// Advance records the answer to the pending question and returns the
// successor conversation. done is true when all fields are collected;
// the zero Prompt accompanies it. An empty answer repeats the current
// prompt unchanged.
func Advance(conv Conversation, answer string) (Conversation, Prompt, bool) {
	answer = strings.TrimSpace(answer)
	if answer == "" || conv.PendingQuestion == "" {
		if conv.Complete() {
			return conv, Prompt{}, true
		}
		return conv, Prompt{Field: conv.PendingQuestion, Question: questions[conv.PendingQuestion]}, false
	}

	next := conv
	next.CollectedFields = make(map[string]string, len(conv.CollectedFields)+1)
	for k, v := range conv.CollectedFields {
		next.CollectedFields[k] = v
	}
	next.CollectedFields[conv.PendingQuestion] = answer

	for _, field := range fieldOrder {
		if _, ok := next.CollectedFields[field]; !ok {
			next.PendingQuestion = field
			return next, Prompt{Field: field, Question: questions[field]}, false
		}
	}

	next.PendingQuestion = ""
	return next, Prompt{}, true
}

// Confirmed reports whether the requester answered the confirmation
// prompt affirmatively.
func (c Conversation) Confirmed() bool {
	answer := strings.ToLower(strings.TrimSpace(c.CollectedFields[FieldConfirm]))
	return answer == "yes" || answer == "y"
}
