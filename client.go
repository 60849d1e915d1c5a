package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

type (
	RecognizeRequest struct {
		MimeType string `json:"mime_type"`
		Image    string `json:"image"` // base64
	}

	Response struct {
		Success bool   `json:"success"`
		Code    string `json:"code,omitempty"`
		Message string `json:"message,omitempty"`
		Data    any    `json:"data,omitempty"`
	}

	RecognizeResponse struct {
		Text string `json:"text"`
	}
)

// OCRClient talks to a text recognition service over JSON.
type OCRClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewOCRClient(baseURL string) *OCRClient {
	return &OCRClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// sends the image to the service and returns the recognized text
func (c *OCRClient) Recognize(ctx context.Context, image []byte, mimeType string) (string, error) {
	url := fmt.Sprintf("%s/api/recognize", c.baseURL)
	reqData := RecognizeRequest{
		MimeType: mimeType,
		Image:    base64.StdEncoding.EncodeToString(image),
	}

	reqBody, err := json.Marshal(reqData)
	if err != nil {
		return "", fmt.Errorf("%w: error encoding request: %v", ErrRecognition, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return "", fmt.Errorf("%w: error creating request: %v", ErrRecognition, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: error making request: %v", ErrRecognition, err)
	}
	defer resp.Body.Close()

	var apiRes Response
	if err := json.NewDecoder(resp.Body).Decode(&apiRes); err != nil {
		return "", fmt.Errorf("%w: error decoding response: %v", ErrRecognition, err)
	}

	if resp.StatusCode != http.StatusOK || !apiRes.Success {
		return "", fmt.Errorf("%w: %s", ErrRecognition, apiRes.Message)
	}

	// Data arrives as a generic map, re-encode it into RecognizeResponse
	dataJSON, err := json.Marshal(apiRes.Data)
	if err != nil {
		return "", fmt.Errorf("%w: error re-encoding data: %v", ErrRecognition, err)
	}

	var res RecognizeResponse
	if err := json.Unmarshal(dataJSON, &res); err != nil {
		return "", fmt.Errorf("%w: error decoding recognize data: %v", ErrRecognition, err)
	}

	return res.Text, nil
}

func (c *OCRClient) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}
