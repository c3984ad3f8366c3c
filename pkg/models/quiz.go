package models

const (
	QuizTypeName        = "name_quiz"
	QuizTypeFeatureOdd  = "feature_quiz_wrong"
	QuizQuestionOptions = 3
)

// QuizQuestion is generated per request and never persisted.
type QuizQuestion struct {
	Type     string   `json:"type"`
	Question string   `json:"question"`
	Image    string   `json:"image"`
	Options  []string `json:"options"`
	Answer   string   `json:"answer"`
}
