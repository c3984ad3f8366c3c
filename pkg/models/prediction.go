package models

// Prediction is a single (tag, probability) pair returned by the classifier.
type Prediction struct {
	TagID       string  `json:"tagId,omitempty"`
	TagName     string  `json:"tagName"`
	Probability float64 `json:"probability"`
}
