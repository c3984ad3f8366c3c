package quiz

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"zooguide/internal/catalog"
	"zooguide/pkg/models"
)

const (
	QuizSize      = 5
	nameQuestions = 3 // the rest are odd-feature-out questions
)

var ErrInsufficientData = errors.New("not enough animal data to build a quiz (need at least 5)")

type feature struct {
	label string
	value func(models.AnimalRecord) string
}

var features = []feature{
	{label: "Habitat", value: func(a models.AnimalRecord) string { return a.Habitat }},
	{label: "Diet", value: func(a models.AnimalRecord) string { return a.Diet }},
	{label: "Endangered status", value: func(a models.AnimalRecord) string { return a.Endangered }},
}

// NewRand returns an independently seeded source for one quiz.
func NewRand() *rand.Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// Generate builds a 5-question quiz: three name questions followed by two
// odd-feature-out questions, each about a different animal. It only reads
// the catalog, so the result depends on nothing but c and rng.
func Generate(c *catalog.Catalog, rng *rand.Rand) ([]models.QuizQuestion, error) {
	if c.Len() < QuizSize {
		return nil, ErrInsufficientData
	}
	if rng == nil {
		rng = NewRand()
	}

	keys := c.Keys()
	rng.Shuffle(len(keys), func(i, j int) { keys[i], keys[j] = keys[j], keys[i] })
	subjects := keys[:QuizSize]

	quiz := make([]models.QuizQuestion, 0, QuizSize)
	for i, key := range subjects {
		var (
			q   models.QuizQuestion
			err error
		)
		if i < nameQuestions {
			q, err = nameQuestion(c, rng, key)
		} else {
			q, err = featureQuestion(c, rng, key)
		}
		if err != nil {
			return nil, err
		}
		quiz = append(quiz, q)
	}
	return quiz, nil
}

func nameQuestion(c *catalog.Catalog, rng *rand.Rand, subjectKey string) (models.QuizQuestion, error) {
	subject, _ := c.Get(subjectKey)

	// distinct display names only, so options never repeat
	seen := map[string]struct{}{subject.Name: {}}
	var wrong []string
	for _, key := range c.Keys() {
		if key == subjectKey {
			continue
		}
		rec, _ := c.Get(key)
		if _, dup := seen[rec.Name]; dup {
			continue
		}
		seen[rec.Name] = struct{}{}
		wrong = append(wrong, rec.Name)
	}
	if len(wrong) < models.QuizQuestionOptions-1 {
		return models.QuizQuestion{}, fmt.Errorf("name question for %q: %w", subjectKey, ErrInsufficientData)
	}
	shuffleStrings(rng, wrong)

	options := []string{wrong[0], wrong[1], subject.Name}
	shuffleStrings(rng, options)

	return models.QuizQuestion{
		Type:     models.QuizTypeName,
		Question: "What animal is this?",
		Image:    subject.Image,
		Options:  options,
		Answer:   subject.Name,
	}, nil
}

func featureQuestion(c *catalog.Catalog, rng *rand.Rand, subjectKey string) (models.QuizQuestion, error) {
	subject, _ := c.Get(subjectKey)

	order := rng.Perm(len(features))
	trueA, trueB, foreign := features[order[0]], features[order[1]], features[order[2]]

	// Any other animal will do, but one whose value differs from the
	// subject's keeps the odd option actually wrong.
	var others, differing []models.AnimalRecord
	for _, key := range c.Keys() {
		rec, _ := c.Get(key)
		if key == subjectKey || rec.Name == subject.Name {
			continue
		}
		others = append(others, rec)
		if foreign.value(rec) != foreign.value(subject) {
			differing = append(differing, rec)
		}
	}
	pool := differing
	if len(pool) == 0 {
		pool = others
	}
	if len(pool) == 0 {
		return models.QuizQuestion{}, fmt.Errorf("feature question for %q: %w", subjectKey, ErrInsufficientData)
	}
	stranger := pool[rng.Intn(len(pool))]

	odd := render(foreign, stranger)
	options := []string{render(trueA, subject), render(trueB, subject), odd}
	shuffleStrings(rng, options)

	return models.QuizQuestion{
		Type:     models.QuizTypeFeatureOdd,
		Question: fmt.Sprintf("Which of these is NOT true of the %s?", subject.Name),
		Image:    subject.Image,
		Options:  options,
		Answer:   odd,
	}, nil
}

func render(f feature, a models.AnimalRecord) string {
	return f.label + ": " + f.value(a)
}

// shuffleStrings is an in-place Fisher-Yates shuffle.
func shuffleStrings(rng *rand.Rand, s []string) {
	rng.Shuffle(len(s), func(i, j int) { s[i], s[j] = s[j], s[i] })
}
