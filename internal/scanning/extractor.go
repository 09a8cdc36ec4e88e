package scanning

// Extractor defines the interface for optical text extraction from
// receipt images
type Extractor interface {
	// ExtractText reads a receipt image/PDF and returns its raw text.
	// An empty string means the document had no usable text; callers
	// decide whether that is an error.
	ExtractText(imageData []byte, contentType string) (string, error)
	// Close closes the extractor and releases resources
	Close() error
}

// extractTextPrompt is the shared prompt used by all LLM providers for
// transcribing receipt text
const extractTextPrompt = `You are transcribing a shopping receipt. Read every line of text visible in the image, from top to bottom.

Return the raw text of the receipt with one output line per printed line. Preserve item names, quantities, and prices exactly as they appear.

Important:
- Do not summarize, interpret, or reorder the lines
- Do not translate anything
- Do not add commentary, headers, or markdown formatting
- If the image contains no readable text, return an empty response`
