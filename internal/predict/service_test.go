package predict

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zooguide/internal/catalog"
	"zooguide/internal/vision"
	"zooguide/pkg/models"
)

type stubClassifier struct {
	preds []models.Prediction
	err   error
	calls int
}

func (s *stubClassifier) Classify(ctx context.Context, image []byte) ([]models.Prediction, error) {
	s.calls++
	if _, ok := ctx.Deadline(); !ok {
		return nil, errors.New("classify called without a deadline")
	}
	return s.preds, s.err
}

type stubWriter struct {
	events []models.PredictionEvent
	err    error
}

func (w *stubWriter) Append(_ context.Context, ev models.PredictionEvent) error {
	w.events = append(w.events, ev)
	return w.err
}

func testResolver() *catalog.Resolver {
	return catalog.NewResolver(catalog.New(map[string]models.AnimalRecord{
		"lion":  {Name: "Lion", Habitat: "Savanna"},
		"tiger": {Name: "Tiger", Habitat: "Forest"},
	}))
}

func newTestService(cl Classifier, w EventWriter) *Service {
	return &Service{
		Classifier: cl,
		Resolver:   testResolver(),
		Events:     w,
		Threshold:  0.5,
		Location:   time.UTC,
		Now:        func() time.Time { return time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC) },
	}
}

func TestHandle_MissingImage(t *testing.T) {
	cl := &stubClassifier{}
	w := &stubWriter{}
	res := newTestService(cl, w).Handle(context.Background(), nil, "u")

	assert.Equal(t, http.StatusBadRequest, res.Status)
	assert.NotEmpty(t, res.Body.(ErrorBody).Message)
	assert.Zero(t, cl.calls)
	assert.Empty(t, w.events)
}

func TestHandle_Success_CaseInsensitive(t *testing.T) {
	cl := &stubClassifier{preds: []models.Prediction{
		{TagName: "Tiger", Probability: 0.2},
		{TagName: "Lion", Probability: 0.95},
	}}
	w := &stubWriter{}
	res := newTestService(cl, w).Handle(context.Background(), []byte("img"), "user-7")

	require.Equal(t, http.StatusOK, res.Status)
	body := res.Body.(PredictionBody)
	assert.Equal(t, MsgSuccess, body.Message)
	require.NotNil(t, body.AnimalInfo)
	assert.Equal(t, "Lion", body.AnimalInfo.Name)
	assert.Equal(t, "Lion", body.Predictions[0].TagName)
	assert.Equal(t, "Tiger", body.Predictions[1].TagName)

	require.Len(t, w.events, 1)
	ev := w.events[0]
	assert.Equal(t, "user-7", ev.AnonymousID)
	assert.Equal(t, "2026-04-01", ev.Partition)
	s, ok := ev.Outcome.(models.PredictionSuccess)
	require.True(t, ok)
	assert.Equal(t, "Lion", s.MatchedTag)
	assert.Equal(t, "Lion", s.AnimalName)
	assert.Equal(t, 0.95, s.TopConfidence)
	assert.Equal(t, "Lion:0.9500,Tiger:0.2000", s.Summary)
}

func TestHandle_BelowThreshold(t *testing.T) {
	cl := &stubClassifier{preds: []models.Prediction{
		{TagName: "lion", Probability: 0.3},
		{TagName: "tiger", Probability: 0.5}, // equal to threshold is not confident
	}}
	w := &stubWriter{}
	res := newTestService(cl, w).Handle(context.Background(), []byte("img"), "")

	require.Equal(t, http.StatusNotFound, res.Status)
	body := res.Body.(PredictionBody)
	assert.Nil(t, body.AnimalInfo)
	require.Len(t, body.Predictions, 2)
	assert.Equal(t, "tiger", body.Predictions[0].TagName)
	assert.Equal(t, "lion", body.Predictions[1].TagName)

	require.Len(t, w.events, 1)
	s := w.events[0].Outcome.(models.PredictionSuccess)
	assert.Empty(t, s.MatchedTag)
	assert.Empty(t, s.AnimalName)
	assert.Equal(t, "unknown", w.events[0].AnonymousID)
}

func TestHandle_ConfidentButNotInCatalog(t *testing.T) {
	cl := &stubClassifier{preds: []models.Prediction{{TagName: "penguin", Probability: 0.99}}}
	w := &stubWriter{}
	res := newTestService(cl, w).Handle(context.Background(), []byte("img"), "u")

	require.Equal(t, http.StatusNotFound, res.Status)
	s := w.events[0].Outcome.(models.PredictionSuccess)
	assert.Equal(t, "penguin", s.MatchedTag)
	assert.Empty(t, s.AnimalName)
}

func TestHandle_EmptyPredictions(t *testing.T) {
	res := newTestService(&stubClassifier{}, &stubWriter{}).Handle(context.Background(), []byte("img"), "u")

	require.Equal(t, http.StatusNotFound, res.Status)
	body := res.Body.(PredictionBody)
	assert.NotNil(t, body.Predictions)
	assert.Empty(t, body.Predictions)
}

func TestHandle_ClassifierFailure(t *testing.T) {
	cl := &stubClassifier{err: &vision.Error{Kind: vision.KindRateLimited, StatusCode: 429, Err: errors.New("quota")}}
	w := &stubWriter{}
	res := newTestService(cl, w).Handle(context.Background(), []byte("img"), "u")

	require.Equal(t, http.StatusInternalServerError, res.Status)
	assert.Equal(t, vision.UserMessage(cl.err), res.Body.(ErrorBody).Message)

	require.Len(t, w.events, 1)
	f, ok := w.events[0].Outcome.(models.PredictionFailure)
	require.True(t, ok)
	assert.Equal(t, "RateLimited", f.ErrorKind)
	assert.Contains(t, f.ErrorMessage, "quota")
}

func TestHandle_LogFailureDoesNotChangeResponse(t *testing.T) {
	preds := []models.Prediction{{TagName: "lion", Probability: 0.9}}

	ok := newTestService(&stubClassifier{preds: preds}, &stubWriter{}).Handle(context.Background(), []byte("img"), "u")
	failing := newTestService(&stubClassifier{preds: preds}, &stubWriter{err: errors.New("table store down")}).
		Handle(context.Background(), []byte("img"), "u")

	assert.Equal(t, ok, failing)

	miss := []models.Prediction{{TagName: "lion", Probability: 0.1}}
	ok = newTestService(&stubClassifier{preds: miss}, &stubWriter{}).Handle(context.Background(), []byte("img"), "u")
	failing = newTestService(&stubClassifier{preds: miss}, &stubWriter{err: errors.New("down")}).
		Handle(context.Background(), []byte("img"), "u")
	assert.Equal(t, ok, failing)
}

func TestHandle_NoEventWriter(t *testing.T) {
	svc := newTestService(&stubClassifier{preds: []models.Prediction{{TagName: "lion", Probability: 0.9}}}, nil)
	res := svc.Handle(context.Background(), []byte("img"), "u")
	assert.Equal(t, http.StatusOK, res.Status)
}

func TestSortAndThreshold(t *testing.T) {
	in := []models.Prediction{
		{TagName: "a", Probability: 0.1},
		{TagName: "b", Probability: 0.7},
		{TagName: "c", Probability: 0.7},
		{TagName: "d", Probability: 0.6},
	}
	sorted := SortByConfidence(in)
	assert.Equal(t, []string{"b", "c", "d", "a"}, tags(sorted))
	assert.Equal(t, "a", in[0].TagName, "input is not modified")

	assert.Equal(t, []string{"b", "c"}, tags(AboveThreshold(sorted, 0.6)))
	assert.Empty(t, AboveThreshold(sorted, 0.9))
}

func tags(preds []models.Prediction) []string {
	out := make([]string, 0, len(preds))
	for _, p := range preds {
		out = append(out, p.TagName)
	}
	return out
}
