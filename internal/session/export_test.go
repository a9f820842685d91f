package session

// Test access to the presentation plan.
var Plan = plan

type Entry = entry

const (
	EntryFlashcard  = entryFlashcard
	EntryReviewCard = entryReviewCard
)
