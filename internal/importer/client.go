package importer

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrRejected is returned when the server classified the text as not a
// workout. This is a terminal outcome for the file, not a transport error.
var ErrRejected = errors.New("text rejected as not a workout")

// Client sends note files to the LiftScribe parse endpoint.
type Client struct {
	serverURL  string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates an HTTP client for the LiftScribe server.
func NewClient(serverURL, apiKey string) *Client {
	return &Client{
		serverURL: serverURL,
		apiKey:    apiKey,
		httpClient: &http.Client{
			Timeout: 5 * time.Minute, // a parse holds several oracle round trips
		},
	}
}

type parsePayload struct {
	Text       string `json:"text"`
	Date       string `json:"date,omitempty"`
	WeightUnit string `json:"weightUnit,omitempty"`
}

type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// ParseText POSTs one file's text to the parse endpoint. Retries transient
// failures up to 3 times with exponential backoff; a validation rejection
// is returned immediately as ErrRejected.
func (c *Client) ParseText(text, date, weightUnit string) error {
	data, err := json.Marshal(parsePayload{Text: text, Date: date, WeightUnit: weightUnit})
	if err != nil {
		return fmt.Errorf("marshaling payload: %w", err)
	}

	var lastErr error
	for attempt := range 3 {
		if attempt > 0 {
			time.Sleep(time.Duration(1<<uint(attempt-1)) * time.Second)
		}

		req, err := http.NewRequest(http.MethodPost, c.serverURL+"/api/v1/parse/", bytes.NewReader(data))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-API-Key", c.apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusCreated:
			return nil
		case resp.StatusCode == http.StatusUnprocessableEntity:
			var eb errorBody
			_ = json.Unmarshal(body, &eb)
			return fmt.Errorf("%w: %s", ErrRejected, eb.Error)
		case resp.StatusCode >= 400 && resp.StatusCode < 500:
			// Client errors do not improve on retry.
			return fmt.Errorf("parse failed (status %d): %s", resp.StatusCode, body)
		}
		lastErr = fmt.Errorf("parse failed (status %d): %s", resp.StatusCode, body)
	}

	return fmt.Errorf("after 3 attempts: %w", lastErr)
}
