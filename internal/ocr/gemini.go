// Package ocr recovers the text of scanned payslips with a Gemini model.
package ocr

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"fjacquet/budgea-salary/internal/logging"
	"fjacquet/budgea-salary/internal/models"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// DefaultModel is the Gemini model used when none is configured.
const DefaultModel = "gemini-1.5-flash"

const transcriptionPrompt = `Transcribe all the text of this French payslip exactly as printed.
Keep the original line breaks, accents, amounts and IBAN grouping.
Do not translate, summarize or comment. Output only the transcription.`

// ErrNoAPIKey is returned when the Gemini recognizer is built without a key.
var ErrNoAPIKey = errors.New("GEMINI_API_KEY environment variable not set")

type contentGenerator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// GeminiRecognizer sends payslips to Gemini and returns the transcribed text.
type GeminiRecognizer struct {
	client *genai.Client
	model  contentGenerator
	name   string
	logger logging.Logger
}

// NewGeminiRecognizer creates a recognizer for the given model.
func NewGeminiRecognizer(ctx context.Context, apiKey, model string, logger logging.Logger) (*GeminiRecognizer, error) {
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	if model == "" {
		model = DefaultModel
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	gm := client.GenerativeModel(model)
	gm.SetTemperature(0)

	return &GeminiRecognizer{client: client, model: gm, name: model, logger: logger}, nil
}

// Recognize returns the text Gemini reads in the PDF.
func (g *GeminiRecognizer) Recognize(ctx context.Context, sess models.Session, filename string, data []byte) (string, error) {
	g.logger.Debug("Sending document to Gemini",
		logging.F(logging.FieldFile, filename),
		logging.F(logging.FieldProvider, g.name),
		logging.F(logging.FieldRunID, sess.RunID))

	resp, err := g.model.GenerateContent(ctx,
		genai.Blob{MIMEType: "application/pdf", Data: data},
		genai.Text(transcriptionPrompt))
	if err != nil {
		return "", fmt.Errorf("Gemini API error: %w", err)
	}

	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil ||
		len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no response from Gemini API")
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	return b.String(), nil
}

// Close releases the Gemini client.
func (g *GeminiRecognizer) Close() error {
	if g.client == nil {
		return nil
	}
	return g.client.Close()
}
