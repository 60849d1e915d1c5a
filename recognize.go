package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Recognizer turns a timetable image into free-form text.
type Recognizer interface {
	Recognize(ctx context.Context, image []byte, mimeType string) (string, error)
	Close() error
}

var supportedImageTypes = []string{"image/png", "image/jpeg"}

// ReadImage reads an image file and reports its detected MIME type. Only PNG
// and JPEG images are accepted.
func ReadImage(path string) ([]byte, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("%w: failed to read image: %v", ErrInvalidInput, err)
	}
	if len(data) == 0 {
		return nil, "", fmt.Errorf("%w: image %s is empty", ErrInvalidInput, path)
	}

	mime := mimetype.Detect(data)
	for _, supported := range supportedImageTypes {
		if mime.Is(supported) {
			return data, supported, nil
		}
	}

	return nil, "", fmt.Errorf("%w: unsupported image type %s, use PNG or JPEG", ErrInvalidInput, mime.String())
}

// NewRecognizer builds the recognizer selected by OCR_DRIVER.
func NewRecognizer(ctx context.Context, cfg *Config) (Recognizer, error) {
	switch cfg.OCR.Driver {
	case "http":
		return NewOCRClient(cfg.OCR.URL), nil
	case "gemini":
		return NewGeminiRecognizer(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model, time.Duration(cfg.Gemini.Timeout)*time.Second)
	default:
		return nil, fmt.Errorf("unknown OCR driver %q", cfg.OCR.Driver)
	}
}

const transcribePrompt = "Transcribe all text in this timetable image exactly as it appears, " +
	"one line per visual line, in reading order. Reply with the text only, " +
	"without any commentary or formatting."

type GeminiRecognizer struct {
	client  *genai.Client
	model   *genai.GenerativeModel
	timeout time.Duration
}

func NewGeminiRecognizer(ctx context.Context, apiKey, model string, timeout time.Duration) (*GeminiRecognizer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: GEMINI_API_KEY is not set", ErrRecognition)
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create gemini client: %v", ErrRecognition, err)
	}

	return &GeminiRecognizer{
		client:  client,
		model:   client.GenerativeModel(model),
		timeout: timeout,
	}, nil
}

func (g *GeminiRecognizer) Recognize(ctx context.Context, image []byte, mimeType string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	prompt := []genai.Part{
		genai.Text(transcribePrompt),
		&genai.Blob{MIMEType: mimeType, Data: image},
	}

	resp, err := g.model.GenerateContent(ctx, prompt...)
	if err != nil {
		return "", fmt.Errorf("%w: gemini error: %v", ErrRecognition, err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%w: gemini returned no result", ErrRecognition)
	}

	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return "", fmt.Errorf("%w: gemini response is not text", ErrRecognition)
	}

	return strings.Trim(string(text), "` \n"), nil
}

func (g *GeminiRecognizer) Close() error {
	return g.client.Close()
}
