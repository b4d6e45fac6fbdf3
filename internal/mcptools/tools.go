// Package mcptools exposes extraction and validation as MCP tools.
package mcptools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/joseph-ayodele/payslip-extractor/constants"
	"github.com/joseph-ayodele/payslip-extractor/internal/common"
	"github.com/joseph-ayodele/payslip-extractor/internal/core"
	"github.com/joseph-ayodele/payslip-extractor/internal/core/consistency"
	"github.com/joseph-ayodele/payslip-extractor/internal/core/llm"
	"github.com/joseph-ayodele/payslip-extractor/internal/entity"
)

const (
	ToolExtract  = "extract_payslip"
	ToolValidate = "validate_payslip"
)

type Tools struct {
	proc     *core.Processor
	resolver llm.FallbackResolver
	maxBytes int
	logger   *slog.Logger
}

// New wires the tools. resolver may be nil.
func New(proc *core.Processor, resolver llm.FallbackResolver, maxBytes int, logger *slog.Logger) *Tools {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tools{proc: proc, resolver: resolver, maxBytes: maxBytes, logger: logger}
}

// Register adds every tool to srv.
func (t *Tools) Register(srv *mcp.Server) {
	srv.AddTool(&mcp.Tool{
		Name:        ToolExtract,
		Description: "Extract a structured payslip (br, fr, pt) from OCR text and validate it.",
		InputSchema: inputSchema(map[string]any{
			"ocr_text":     map[string]any{"type": "string", "description": "Raw OCR text of the payslip"},
			"country":      map[string]any{"type": "string", "description": "Country code: br, fr or pt"},
			"file_name":    map[string]any{"type": "string"},
			"use_fallback": map[string]any{"type": "boolean", "description": "Allow the generative fallback (default true)"},
		}, []string{"ocr_text", "country"}),
	}, handler(t.logger, ToolExtract, t.extract))

	srv.AddTool(&mcp.Tool{
		Name:        ToolValidate,
		Description: "Check an extracted payslip for arithmetic and jurisdiction consistency and propose corrections.",
		InputSchema: inputSchema(map[string]any{
			"payslip": map[string]any{"type": "object", "description": "Record with canonical snake_case fields and a country"},
		}, []string{"payslip"}),
	}, handler(t.logger, ToolValidate, t.validate))
}

func inputSchema(properties map[string]any, required []string) map[string]any {
	s := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

type endpoint func(ctx context.Context, args json.RawMessage) (any, error)

func handler(logger *slog.Logger, name string, ep endpoint) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ctx, reqID := common.EnsureRequestID(ctx)
		resp, err := ep(ctx, req.Params.Arguments)
		if err != nil {
			logger.Warn("mcp.tool.failed", "tool", name, "req_id", reqID, "error", err)
			var res mcp.CallToolResult
			res.SetError(errors.New(common.Message(err)))
			return &res, nil
		}
		data, err := json.Marshal(resp)
		if err != nil {
			var res mcp.CallToolResult
			res.SetError(fmt.Errorf("marshal: %w", err))
			return &res, nil
		}
		logger.Info("mcp.tool.ok", "tool", name, "req_id", reqID)
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
		}, nil
	}
}

type extractReq struct {
	OCRText     string `json:"ocr_text"`
	Country     string `json:"country"`
	FileName    string `json:"file_name"`
	UseFallback *bool  `json:"use_fallback"`
}

func (t *Tools) extract(ctx context.Context, args json.RawMessage) (any, error) {
	var r extractReq
	if err := json.Unmarshal(args, &r); err != nil {
		return nil, common.NewAppError(common.CodeInvalidInput, "invalid arguments: "+err.Error(), common.ErrInvalidInput)
	}
	v := common.NewValidator().Field("ocr_text", r.OCRText, common.MaxBytes(t.maxBytes))
	if strings.TrimSpace(r.OCRText) != "" {
		v.Field("country", r.Country, common.Required, common.CountryCode)
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	var fb llm.FallbackFunc
	if t.resolver != nil && (r.UseFallback == nil || *r.UseFallback) {
		if c, ok := constants.ParseCountry(r.Country); ok {
			fb = t.resolver(c)
		}
	}
	res := t.proc.Extract(ctx, core.Input{OCRText: r.OCRText, FileName: r.FileName}, r.Country, fb)
	if !res.Success {
		return nil, res.Err
	}
	return res, nil
}

type validateReq struct {
	Payslip *entity.ExtractedPayslip `json:"payslip"`
}

type validateResp struct {
	Validation entity.ValidationResult  `json:"validation"`
	Payslip    *entity.ExtractedPayslip `json:"payslip"`
}

func (t *Tools) validate(_ context.Context, args json.RawMessage) (any, error) {
	var r validateReq
	if err := json.Unmarshal(args, &r); err != nil {
		return nil, common.NewAppError(common.CodeInvalidInput, "invalid arguments: "+err.Error(), common.ErrInvalidInput)
	}
	if r.Payslip == nil {
		return nil, common.NewAppError(common.CodeInvalidInput, "payslip object is required", common.ErrInvalidInput)
	}
	if c, ok := constants.ParseCountry(string(r.Payslip.Country)); ok {
		r.Payslip.Country = c
	}
	validation := consistency.Validate(r.Payslip)
	return validateResp{
		Validation: validation,
		Payslip:    consistency.ApplyCorrections(r.Payslip, validation.Corrections),
	}, nil
}
