package predict

import (
	"context"
	"log"
	"net/http"
	"sort"
	"time"

	"zooguide/internal/predictlog"
	"zooguide/internal/vision"
	"zooguide/pkg/models"
)

const (
	MsgSuccess       = "Prediction successful!"
	MsgNotFound      = "No matching animal information was found, or the prediction confidence is too low."
	MsgImageRequired = "An image file is required."
)

type Classifier interface {
	Classify(ctx context.Context, image []byte) ([]models.Prediction, error)
}

type AnimalResolver interface {
	Resolve(tag string) (models.AnimalRecord, string, error)
}

type EventWriter interface {
	Append(ctx context.Context, ev models.PredictionEvent) error
}

type Service struct {
	Classifier Classifier
	Resolver   AnimalResolver
	Events     EventWriter

	// Threshold is exclusive: a prediction is confident when probability > Threshold.
	Threshold       float64
	ClassifyTimeout time.Duration
	LogTimeout      time.Duration
	Location        *time.Location
	Now             func() time.Time
}

type ErrorBody struct {
	Message string `json:"message"`
}

type PredictionBody struct {
	Message     string               `json:"message"`
	Predictions []models.Prediction  `json:"predictions"`
	AnimalInfo  *models.AnimalRecord `json:"animalInfo,omitempty"`
}

type Result struct {
	Status int
	Body   any
}

// Handle runs one classification request. Whatever happens, an event is
// appended to the log; a failed append is only logged and never changes
// the result.
func (s *Service) Handle(ctx context.Context, image []byte, anonymousID string) Result {
	if len(image) == 0 {
		return Result{Status: http.StatusBadRequest, Body: ErrorBody{Message: MsgImageRequired}}
	}

	params := predictlog.EventParams{AnonymousID: anonymousID}

	cctx, cancel := context.WithTimeout(ctx, s.classifyTimeout())
	preds, err := s.Classifier.Classify(cctx, image)
	cancel()
	if err != nil {
		log.Printf("[predict] classify failed: %v", err)
		params.Err = err
		params.ErrorKind = string(vision.KindOf(err))
		s.record(ctx, params)
		return Result{Status: http.StatusInternalServerError, Body: ErrorBody{Message: vision.UserMessage(err)}}
	}

	sorted := SortByConfidence(preds)
	params.Predictions = sorted

	var animal *models.AnimalRecord
	if confident := AboveThreshold(sorted, s.Threshold); len(confident) > 0 {
		top := confident[0]
		params.MatchedTag = top.TagName
		if rec, _, err := s.Resolver.Resolve(top.TagName); err == nil {
			animal = &rec
			params.AnimalName = rec.Name
		}
	}

	s.record(ctx, params)

	if animal == nil {
		return Result{Status: http.StatusNotFound, Body: PredictionBody{Message: MsgNotFound, Predictions: sorted}}
	}
	return Result{Status: http.StatusOK, Body: PredictionBody{Message: MsgSuccess, Predictions: sorted, AnimalInfo: animal}}
}

func (s *Service) record(ctx context.Context, params predictlog.EventParams) {
	if s.Events == nil {
		return
	}
	params.At = s.now()
	params.Location = s.Location
	ev := predictlog.NewEvent(params)

	// detached from the request so a client hang-up still gets logged
	lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.logTimeout())
	defer cancel()
	if err := s.Events.Append(lctx, ev); err != nil {
		log.Printf("[predict] log write failed for %s: %v", ev.ID, err)
		return
	}
	log.Printf("[predict] logged %s/%s", ev.Partition, ev.ID)
}

func (s *Service) classifyTimeout() time.Duration {
	if s.ClassifyTimeout > 0 {
		return s.ClassifyTimeout
	}
	return 30 * time.Second
}

func (s *Service) logTimeout() time.Duration {
	if s.LogTimeout > 0 {
		return s.LogTimeout
	}
	return 5 * time.Second
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// SortByConfidence returns a copy sorted by probability, highest first.
// Never nil, so it always encodes as a JSON array.
func SortByConfidence(preds []models.Prediction) []models.Prediction {
	out := make([]models.Prediction, len(preds))
	copy(out, preds)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Probability > out[j].Probability })
	return out
}

// AboveThreshold keeps predictions with probability strictly above threshold,
// preserving order.
func AboveThreshold(preds []models.Prediction, threshold float64) []models.Prediction {
	var out []models.Prediction
	for _, p := range preds {
		if p.Probability > threshold {
			out = append(out, p)
		}
	}
	return out
}
