package clients

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalog-service/internal/importer"
	"catalog-service/internal/models"
)

func TestNewGeminiClientRequiresAPIKey(t *testing.T) {
	_, err := NewGeminiClient(context.Background(), "", "gemini-2.0-flash", nil)

	var configErr *importer.ConfigurationError
	require.True(t, errors.As(err, &configErr))
	assert.Contains(t, configErr.Reason, "GEMINI_API_KEY")
}

func TestUnconfiguredExtractor(t *testing.T) {
	stub := &UnconfiguredExtractor{Reason: "GEMINI_API_KEY is not configured"}
	_, err := stub.Extract(context.Background(), nil, models.ReferenceData{}, nil)

	var configErr *importer.ConfigurationError
	assert.True(t, errors.As(err, &configErr))
}

func TestDecodeExtraction(t *testing.T) {
	payload := `{
		"products": [{"name": "Sofá Berlim", "price": 3499, "category": "Sofás", "sizes": ["3 Lugares"], "colors": ["Bege"], "sourceRow": 2}],
		"newCategories": ["Mesas"],
		"newColors": [{"name": "Rosa", "hexCode": "#ea9fc2"}],
		"errors": ["row 5: no price"]
	}`

	result, err := decodeExtraction(payload)
	require.NoError(t, err)
	require.Len(t, result.Products, 1)
	assert.Equal(t, "Sofá Berlim", result.Products[0].Name)
	assert.Equal(t, 3499.0, result.Products[0].Price)
	assert.Equal(t, 2, result.Products[0].SourceRow)
	assert.Equal(t, []string{"Mesas"}, result.NewCategories)
	require.Len(t, result.NewColors, 1)
	assert.Equal(t, "#ea9fc2", result.NewColors[0].HexCode)
}

func TestDecodeExtractionKeepsRowErrors(t *testing.T) {
	payload := `{"products": [], "newCategories": [], "newColors": [], "errors": ["Linha 5: preco ausente"]}`

	result, err := decodeExtraction(payload)
	require.NoError(t, err)
	assert.Equal(t, []string{"Linha 5: preco ausente"}, result.Errors)
}

func TestDecodeExtractionStripsCodeFence(t *testing.T) {
	fenced := "```json\n{\"products\": [], \"newCategories\": [\"Mesas\"], \"newColors\": []}\n```"

	result, err := decodeExtraction(fenced)
	require.NoError(t, err)
	assert.Equal(t, []string{"Mesas"}, result.NewCategories)
}

func TestDecodeExtractionInvalidJSON(t *testing.T) {
	_, err := decodeExtraction("the model apologizes and refuses")

	var extractErr *importer.ExtractionError
	require.True(t, errors.As(err, &extractErr))
}

func TestDecodeExtractionEmptyResponse(t *testing.T) {
	_, err := decodeExtraction("   ")

	var extractErr *importer.ExtractionError
	assert.True(t, errors.As(err, &extractErr))
}

func TestBuildPromptIncludesReferenceDataAndRows(t *testing.T) {
	rows := []models.RawRow{{"nome": "Sofá Berlim", "preco": "R$ 3.499", "_row": "2"}}
	ref := models.ReferenceData{
		Categories: []string{"Sofás"},
		Sizes:      []string{"2 Lugares", "3 Lugares"},
		Colors:     []string{"Bege"},
	}

	prompt, err := buildPrompt(rows, ref, nil)
	require.NoError(t, err)

	assert.Contains(t, prompt, `"Sofás"`)
	assert.Contains(t, prompt, `"3 Lugares"`)
	assert.Contains(t, prompt, `"Bege"`)
	assert.Contains(t, prompt, "Sofá Berlim")
	assert.Contains(t, prompt, "newCategories")
	assert.NotContains(t, prompt, "mapped columns manually")
}

func TestBuildPromptIncludesMapping(t *testing.T) {
	mapping := &models.ColumnMapping{Name: "produto", Price: "valor"}

	prompt, err := buildPrompt(nil, models.ReferenceData{}, mapping)
	require.NoError(t, err)

	assert.Contains(t, prompt, `column "produto"`)
	assert.Contains(t, prompt, `column "valor"`)
	assert.Contains(t, prompt, "detect automatically")
}
