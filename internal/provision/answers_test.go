package provision

import (
	"testing"

	"github.com/reefcloud/catalog-provision-service/internal/models"
)

func TestBuildAnswerSet(t *testing.T) {
	questions := []models.Question{
		{ID: "q1", Key: "cpu_count", Default: "1"},
		{ID: "q2", Key: "memory_mb", Default: "10"},
	}
	answers := []models.Answer{
		{QuestionID: "q1", Value: "5"},
	}

	set := BuildAnswerSet(questions, answers)

	if len(set) != 2 {
		t.Fatalf("answer set size = %d, want 2", len(set))
	}
	if set["cpu_count"] != "5" {
		t.Errorf("cpu_count = %q, want recorded answer 5", set["cpu_count"])
	}
	if set["memory_mb"] != "10" {
		t.Errorf("memory_mb = %q, want default 10", set["memory_mb"])
	}
}

func TestBuildAnswerSetIgnoresStaleAnswers(t *testing.T) {
	questions := []models.Question{
		{ID: "q1", Key: "cpu_count", Default: "1"},
	}
	// Answers for questions no longer on the product do not leak through.
	answers := []models.Answer{
		{QuestionID: "q1", Value: "5"},
		{QuestionID: "removed", Value: "99"},
	}

	set := BuildAnswerSet(questions, answers)

	if len(set) != 1 {
		t.Fatalf("answer set size = %d, want 1", len(set))
	}
	if set["cpu_count"] != "5" {
		t.Errorf("cpu_count = %q", set["cpu_count"])
	}
}

func TestBuildAnswerSetEmptyQuestions(t *testing.T) {
	set := BuildAnswerSet(nil, []models.Answer{{QuestionID: "q1", Value: "5"}})
	if len(set) != 0 {
		t.Fatalf("answer set size = %d, want 0", len(set))
	}
}
