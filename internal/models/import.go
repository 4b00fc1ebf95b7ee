package models

// ImportFormat represents the file format for import
type ImportFormat string

const (
	ImportFormatCSV  ImportFormat = "csv"
	ImportFormatXLSX ImportFormat = "xlsx"
)

// ImportStatus represents the phase of an import run
type ImportStatus string

const (
	ImportStatusIdle       ImportStatus = "idle"
	ImportStatusParsing    ImportStatus = "parsing"
	ImportStatusProcessing ImportStatus = "processing"
	ImportStatusCreating   ImportStatus = "creating"
	ImportStatusDone       ImportStatus = "done"
	ImportStatusError      ImportStatus = "error"
)

// RawRow is one spreadsheet row keyed by lowercased, trimmed header.
// The reader adds a "_row" key with the 1-based spreadsheet row number.
type RawRow map[string]string

// ColumnMapping maps product fields to source column headers. An empty
// value means the source has no column for that field.
type ColumnMapping struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       string `json:"price"`
	Category    string `json:"category"`
	Sizes       string `json:"sizes"`
	Colors      string `json:"colors"`
	ImageURL    string `json:"imageUrl"`
}

// ProcessedProduct is one normalized product produced by extraction,
// before any database id has been assigned.
type ProcessedProduct struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Category    string   `json:"category"`
	Sizes       []string `json:"sizes"`
	Colors      []string `json:"colors"`
	ImageURL    string   `json:"imageUrl,omitempty"`
	SourceRow   int      `json:"sourceRow,omitempty"`
}

// NewColor is a color the extraction step did not find in the existing
// material snapshot, with an inferred hex code when one could be guessed
type NewColor struct {
	Name    string `json:"name"`
	HexCode string `json:"hexCode,omitempty"`
}

// ExtractionResult is the normalized output of one extraction call
type ExtractionResult struct {
	Products      []ProcessedProduct `json:"products"`
	NewCategories []string           `json:"newCategories"`
	NewColors     []NewColor         `json:"newColors"`
	Errors        []string           `json:"errors"`
}

// ReferenceData is the snapshot of existing active entities handed to
// the extraction backend so it can reuse known names.
type ReferenceData struct {
	Categories []string `json:"categories"`
	Sizes      []string `json:"sizes"`
	Colors     []string `json:"colors"`
}

// ImportProgress reports the state of a running import
type ImportProgress struct {
	Total   int          `json:"total"`
	Current int          `json:"current"`
	Status  ImportStatus `json:"status"`
	Message string       `json:"message"`
	Errors  []string     `json:"errors"`
}

// ImportSummary is the final outcome of an import run
type ImportSummary struct {
	ProductsCreated   int      `json:"productsCreated"`
	CategoriesCreated int      `json:"categoriesCreated"`
	MaterialsCreated  int      `json:"materialsCreated"`
	Errors            []string `json:"errors"`
}

// ImportPreview is returned by the preview endpoint before any
// extraction or writes happen.
type ImportPreview struct {
	Columns   []string `json:"columns"`
	RowCount  int      `json:"rowCount"`
	Rows      []RawRow `json:"rows"`
	Truncated bool     `json:"truncated"`
}

// ImportResponse wraps the summary for the import endpoint
type ImportResponse struct {
	Success bool           `json:"success"`
	Data    *ImportSummary `json:"data"`
}

// ImportPreviewResponse wraps the preview payload
type ImportPreviewResponse struct {
	Success bool           `json:"success"`
	Data    *ImportPreview `json:"data"`
}

// ImportTemplateColumn defines a column in the import template
type ImportTemplateColumn struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
	Type        string `json:"type"` // string, number
	Example     string `json:"example"`
}

// ImportTemplate defines the downloadable import template
type ImportTemplate struct {
	Entity  string                 `json:"entity"`
	Version string                 `json:"version"`
	Columns []ImportTemplateColumn `json:"columns"`
}

// ProductImportColumns returns the column definitions for product import.
// Headers are suggestions only, the extraction step maps whatever the
// spreadsheet actually uses.
func ProductImportColumns() []ImportTemplateColumn {
	return []ImportTemplateColumn{
		{Name: "nome", Description: "Product name", Required: true, Type: "string", Example: "Sofá Berlim 3 Lugares"},
		{Name: "descricao", Description: "Product description", Required: false, Type: "string", Example: "Sofá em linho com pés de madeira"},
		{Name: "preco", Description: "Price (R$ prefix and thousand separators accepted)", Required: true, Type: "number", Example: "R$ 3.499,00"},
		{Name: "categoria", Description: "Category name, created automatically when new", Required: false, Type: "string", Example: "Sofás"},
		{Name: "tamanhos", Description: "Slash or comma separated sizes", Required: false, Type: "string", Example: "2 Lugares / 3 Lugares"},
		{Name: "cores", Description: "Slash or comma separated colors", Required: false, Type: "string", Example: "Bege, Cinza"},
		{Name: "imagem", Description: "Image URL", Required: false, Type: "string", Example: ""},
	}
}

// ProductImportTemplate returns the template definition for products
func ProductImportTemplate() ImportTemplate {
	return ImportTemplate{
		Entity:  "products",
		Version: "1.0",
		Columns: ProductImportColumns(),
	}
}
