package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"google.golang.org/genai"

	"catalog-service/internal/importer"
	"catalog-service/internal/models"
)

const defaultGeminiModel = "gemini-2.0-flash"

// UnconfiguredExtractor stands in when no API key is set. Imports still
// reach the pipeline and fail with a configuration error instead of the
// service refusing to boot.
type UnconfiguredExtractor struct {
	Reason string
}

func (u *UnconfiguredExtractor) Extract(ctx context.Context, rows []models.RawRow, ref models.ReferenceData, mapping *models.ColumnMapping) (*models.ExtractionResult, error) {
	return nil, &importer.ConfigurationError{Reason: u.Reason}
}

// GeminiClient implements extraction against the Gemini API
type GeminiClient struct {
	client *genai.Client
	model  string
	logger *logrus.Logger
}

// NewGeminiClient builds the extraction client. A missing API key is a
// configuration error so the import endpoints can report it cleanly.
func NewGeminiClient(ctx context.Context, apiKey, model string, logger *logrus.Logger) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, &importer.ConfigurationError{Reason: "GEMINI_API_KEY is not configured"}
	}
	if model == "" {
		model = defaultGeminiModel
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, &importer.ConfigurationError{Reason: fmt.Sprintf("failed to initialize Gemini client: %v", err)}
	}
	return &GeminiClient{client: client, model: model, logger: logger}, nil
}

// Extract sends one batch of rows to Gemini and decodes the JSON payload
func (g *GeminiClient) Extract(ctx context.Context, rows []models.RawRow, ref models.ReferenceData, mapping *models.ColumnMapping) (*models.ExtractionResult, error) {
	prompt, err := buildPrompt(rows, ref, mapping)
	if err != nil {
		return nil, &importer.ExtractionError{Detail: "failed to encode rows", Err: err}
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		Temperature:      genai.Ptr[float32](0.1),
	})
	if err != nil {
		return nil, &importer.ExtractionError{Detail: "request failed", Err: err}
	}

	text := resp.Text()
	g.logger.WithFields(logrus.Fields{"rows": len(rows), "response_bytes": len(text)}).Debug("Gemini extraction response received")

	result, err := decodeExtraction(text)
	if err != nil {
		return nil, err
	}
	return result, nil
}

type extractionPayload struct {
	Products      []models.ProcessedProduct `json:"products"`
	NewCategories []string                  `json:"newCategories"`
	NewColors     []models.NewColor         `json:"newColors"`
	Errors        []string                  `json:"errors"`
}

func decodeExtraction(text string) (*models.ExtractionResult, error) {
	cleaned := stripCodeFence(text)
	if cleaned == "" {
		return nil, &importer.ExtractionError{Detail: "empty response"}
	}

	var payload extractionPayload
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return nil, &importer.ExtractionError{Detail: "response is not valid JSON", Err: err}
	}
	return &models.ExtractionResult{
		Products:      payload.Products,
		NewCategories: payload.NewCategories,
		NewColors:     payload.NewColors,
		Errors:        payload.Errors,
	}, nil
}

// stripCodeFence removes a surrounding markdown fence the model sometimes
// adds despite the JSON response mime type.
func stripCodeFence(text string) string {
	s := strings.TrimSpace(text)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
	}
	return strings.TrimSpace(s)
}

func buildPrompt(rows []models.RawRow, ref models.ReferenceData, mapping *models.ColumnMapping) (string, error) {
	rowsJSON, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return "", err
	}
	categoriesJSON, _ := json.Marshal(ref.Categories)
	sizesJSON, _ := json.Marshal(ref.Sizes)
	colorsJSON, _ := json.Marshal(ref.Colors)

	var b strings.Builder
	b.WriteString(`You are a product import assistant for a catalog admin tool.
Analyze the spreadsheet rows and return valid JSON following exactly this schema:

{
  "products": [
    {
      "name": "string (product name)",
      "description": "string or empty",
      "price": number (numeric value, no currency symbol),
      "category": "string (category name)",
      "sizes": ["string"],
      "colors": ["string"],
      "imageUrl": "string or empty",
      "sourceRow": number (value of the _row field)
    }
  ],
  "newCategories": ["string"],
  "newColors": [{ "name": "string", "hexCode": "#RRGGBB" }],
  "errors": ["string"]
}

Rules:
1. Prefer size names from the known list below; normalize obvious variants onto it.
2. For each color not in the known list, add it to newColors and infer a plausible hex code (e.g. "Rosa" -> "#ea9fc2", "Preto" -> "#1a1a1a").
3. Prices must be plain numbers: strip "R$", thousand separators and convert decimal commas.
4. If a row has no parseable price, use 0.
5. Category names not in the known list go in newCategories.
6. Report unusable rows in "errors", mentioning the _row value.
`)

	if mapping != nil {
		b.WriteString("\nThe user mapped columns manually:\n")
		writeMappingLine(&b, "Product name", mapping.Name)
		writeMappingLine(&b, "Description", mapping.Description)
		writeMappingLine(&b, "Price", mapping.Price)
		writeMappingLine(&b, "Category", mapping.Category)
		writeMappingLine(&b, "Sizes", mapping.Sizes)
		writeMappingLine(&b, "Colors", mapping.Colors)
		writeMappingLine(&b, "Image URL", mapping.ImageURL)
	}

	fmt.Fprintf(&b, "\nKnown categories: %s\n", categoriesJSON)
	fmt.Fprintf(&b, "Known sizes: %s\n", sizesJSON)
	fmt.Fprintf(&b, "Known colors: %s\n", colorsJSON)
	fmt.Fprintf(&b, "\nSpreadsheet rows (JSON):\n%s\n", rowsJSON)
	return b.String(), nil
}

func writeMappingLine(b *strings.Builder, label, column string) {
	if column == "" {
		column = "detect automatically"
	}
	fmt.Fprintf(b, "- %s: column %q\n", label, column)
}
