package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mattermost/mmjstool/pkg/dictionary"
	"github.com/mattermost/mmjstool/pkg/extractor"
	"github.com/mattermost/mmjstool/pkg/scanner"
)

// ExtractResponse is the result of extract_translations.
type ExtractResponse struct {
	Directory    string                   `json:"directory"`
	Translations extractor.TranslationMap `json:"translations"`
	Keys         int                      `json:"keys"`
	Failure      *FailureInfo             `json:"failure,omitempty"`
	Stats        scanner.ScanStats        `json:"stats"`
}

// FailureInfo locates the file that stopped an extraction.
type FailureInfo struct {
	File   string `json:"file"`
	Line   int    `json:"line,omitempty"`
	Column int    `json:"column,omitempty"`
	Error  string `json:"error"`
}

// CheckResponse is the result of check_translations.
type CheckResponse struct {
	Target  string   `json:"target"`
	Added   []string `json:"added"`
	Removed []string `json:"removed"`
	Changed bool     `json:"changed"`
}

// EmptyResponse is the result of find_empty_translations.
type EmptyResponse struct {
	Target string   `json:"target"`
	File   string   `json:"file"`
	Keys   []string `json:"keys"`
	Count  int      `json:"count"`
}

func (s *Server) handleExtractTranslations(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	dir, err := req.RequireString("directory")
	if err != nil || dir == "" {
		return mcp.NewToolResultError("directory parameter is required"), nil
	}

	result, err := s.tool.ExtractDirectory(ctx, dir)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("extraction failed", err), nil
	}

	resp := ExtractResponse{
		Directory:    result.Root,
		Translations: result.Translations,
		Keys:         len(result.Translations),
		Stats:        result.Stats,
	}
	if f := result.Failure; f != nil {
		msg := f.Error()
		if f.Err != nil {
			msg = f.Err.Error()
		}
		resp.Failure = &FailureInfo{File: f.Path, Line: f.Line, Column: f.Column, Error: msg}
	}
	return marshalToolResponse(resp)
}

func (s *Server) handleCheckTranslations(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("target")
	if err != nil {
		return mcp.NewToolResultError("target parameter is required"), nil
	}
	target, err := s.targets.Lookup(name)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	diff, err := s.tool.Diff(ctx, target)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("check failed", err), nil
	}

	return marshalToolResponse(CheckResponse{
		Target:  target.Name,
		Added:   nonNil(diff.Added),
		Removed: nonNil(diff.Removed),
		Changed: diff.Changed(),
	})
}

func (s *Server) handleFindEmptyTranslations(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("target")
	if err != nil {
		return mcp.NewToolResultError("target parameter is required"), nil
	}
	target, err := s.targets.Lookup(name)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	file := req.GetString("file", dictionary.BaseFile)
	d, err := dictionary.Load(target.TranslationFile(file))
	if err != nil {
		return mcp.NewToolResultErrorFromErr("failed to load dictionary", err), nil
	}

	keys := nonNil(d.EmptyKeys())
	return marshalToolResponse(EmptyResponse{
		Target: target.Name,
		File:   file,
		Keys:   keys,
		Count:  len(keys),
	})
}

// marshalToolResponse returns response as a JSON text result.
func marshalToolResponse(response any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(response)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
