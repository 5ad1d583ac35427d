package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Sumatoshi-tech/usefold/pkg/folding"
	"github.com/Sumatoshi-tech/usefold/pkg/language"
)

// ToolNameRanges is the name of the folding ranges tool.
const ToolNameRanges = "usefold_ranges"

// MaxCodeInputBytes is the maximum allowed size for inline code input (1 MB).
const MaxCodeInputBytes = 1 << 20

// Sentinel errors for tool input validation.
var (
	// ErrEmptyCode indicates the code parameter is empty.
	ErrEmptyCode = errors.New("code parameter is required and must not be empty")
	// ErrEmptyLanguage indicates the language parameter is empty.
	ErrEmptyLanguage = errors.New("language parameter is required and must not be empty")
	// ErrCodeTooLarge indicates the code input exceeds the size limit.
	ErrCodeTooLarge = errors.New("code input exceeds maximum size")
	// ErrLanguageNotFolded indicates the language is outside the configured set.
	ErrLanguageNotFolded = errors.New("language is not folded")
)

// RangesInput is the input schema for the usefold_ranges tool.
type RangesInput struct {
	Code     string `json:"code"     jsonschema:"source code to scan for import groups"`
	Language string `json:"language" jsonschema:"language identifier of the code (e.g. php)"`
}

// RangesResult is the JSON body returned by the usefold_ranges tool.
type RangesResult struct {
	Ranges []folding.Range `json:"ranges"`
}

// ToolOutput is a generic wrapper for tool results.
type ToolOutput struct {
	Data any `json:"data"`
}

func (s *Server) handleRanges(
	ctx context.Context, _ *mcpsdk.CallToolRequest, input RangesInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	err := validateCodeInput(input.Code, input.Language)
	if err != nil {
		return errorResult(err)
	}

	lang := language.Normalize(input.Language)
	if !s.languages.Allows(lang) {
		s.fold.RecordSkip(ctx, lang)

		return errorResult(fmt.Errorf("%w: %s (folded: %v)", ErrLanguageNotFolded, lang, s.languages.IDs()))
	}

	lines := folding.FromText(input.Code)
	ranges := folding.Scan(lines)

	s.fold.RecordScan(ctx, lang, lines.LineCount(), len(ranges))

	return jsonResult(RangesResult{Ranges: ranges})
}

// errorResult builds a CallToolResult with isError set.
func errorResult(err error) (*mcpsdk.CallToolResult, ToolOutput, error) {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: err.Error()},
		},
		IsError: true,
	}, ToolOutput{}, nil
}

// jsonResult builds a CallToolResult with JSON-encoded content.
func jsonResult(value any) (*mcpsdk.CallToolResult, ToolOutput, error) {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return errorResult(fmt.Errorf("encode result: %w", err))
	}

	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: string(data)},
		},
	}, ToolOutput{Data: value}, nil
}

func validateCodeInput(code, lang string) error {
	if code == "" {
		return ErrEmptyCode
	}

	if lang == "" {
		return ErrEmptyLanguage
	}

	if len(code) > MaxCodeInputBytes {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrCodeTooLarge, len(code), MaxCodeInputBytes)
	}

	return nil
}
