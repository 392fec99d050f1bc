package provision

import "github.com/reefcloud/catalog-provision-service/internal/models"

// BuildAnswerSet resolves a product type's questions against the answers
// recorded for an order item. Every question appears exactly once, keyed by
// its platform-facing key; a question with no recorded answer falls back to
// its configured default.
func BuildAnswerSet(questions []models.Question, answers []models.Answer) map[string]string {
	recorded := make(map[string]string, len(answers))
	for _, a := range answers {
		recorded[a.QuestionID] = a.Value
	}

	set := make(map[string]string, len(questions))
	for _, q := range questions {
		if v, ok := recorded[q.ID]; ok {
			set[q.Key] = v
		} else {
			set[q.Key] = q.Default
		}
	}
	return set
}
