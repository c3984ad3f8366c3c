package vision

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"zooguide/pkg/models"
)

const maxErrorBody = 512

// Client calls the Azure Custom Vision prediction API with raw image bytes.
// Images are sent to the "nostore" endpoint so they are not retained.
type Client struct {
	URL    string
	Key    string
	Client *http.Client
}

func NewClient(endpoint, projectID, publishedName, key string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		URL:    PredictionURL(endpoint, projectID, publishedName),
		Key:    key,
		Client: &http.Client{Timeout: timeout},
	}
}

func PredictionURL(endpoint, projectID, publishedName string) string {
	if !strings.HasSuffix(endpoint, "/") {
		endpoint += "/"
	}
	return fmt.Sprintf("%scustomvision/v3.0/Prediction/%s/classify/iterations/%s/image/nostore",
		endpoint, projectID, publishedName)
}

type predictionResponse struct {
	ID          string              `json:"id"`
	Iteration   string              `json:"iteration"`
	Predictions []models.Prediction `json:"predictions"`
}

func (c *Client) Classify(ctx context.Context, image []byte) ([]models.Prediction, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(image))
	if err != nil {
		return nil, &Error{Kind: KindUnknown, Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("Prediction-Key", c.Key)
	req.Header.Set("Content-Type", "application/octet-stream")

	started := time.Now()
	resp, err := c.Client.Do(req)
	if err != nil {
		log.Printf("[vision] request failed after %v: %v", time.Since(started), err)
		return nil, &Error{Kind: kindOfTransport(err), Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Kind: KindServiceUnreachable, StatusCode: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		snippet := string(body)
		if len(snippet) > maxErrorBody {
			snippet = snippet[:maxErrorBody]
		}
		log.Printf("[vision] status %d after %v: %s", resp.StatusCode, time.Since(started), snippet)
		return nil, &Error{
			Kind:       kindOfStatus(resp.StatusCode),
			StatusCode: resp.StatusCode,
			Err:        errors.New(strings.TrimSpace(snippet)),
		}
	}

	var pr predictionResponse
	if err := json.Unmarshal(body, &pr); err != nil {
		return nil, &Error{Kind: KindUnknown, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode: %w", err)}
	}
	log.Printf("[vision] %d predictions in %v", len(pr.Predictions), time.Since(started))
	return pr.Predictions, nil
}
