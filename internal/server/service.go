// Package server exposes the extraction pipeline over gRPC.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joseph-ayodele/payslip-extractor/constants"
	"github.com/joseph-ayodele/payslip-extractor/internal/common"
	"github.com/joseph-ayodele/payslip-extractor/internal/core"
	"github.com/joseph-ayodele/payslip-extractor/internal/core/consistency"
	"github.com/joseph-ayodele/payslip-extractor/internal/core/llm"
	"github.com/joseph-ayodele/payslip-extractor/internal/entity"
)

type PayslipService struct {
	proc         *core.Processor
	resolver     llm.FallbackResolver
	maxTextBytes int
	logger       *slog.Logger
}

// NewPayslipService wires the processor. resolver may be nil.
func NewPayslipService(proc *core.Processor, resolver llm.FallbackResolver, maxTextBytes int, logger *slog.Logger) *PayslipService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PayslipService{proc: proc, resolver: resolver, maxTextBytes: maxTextBytes, logger: logger}
}

// Extract expects {"ocr_text", "country"} plus optional file_name, file_size,
// file_type and use_fallback (default true).
func (s *PayslipService) Extract(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	args := req.AsMap()
	country, _ := args["country"].(string)
	text, _ := args["ocr_text"].(string)

	v := common.NewValidator().Field("ocr_text", text, common.MaxBytes(s.maxTextBytes))
	// empty text outranks a bad country; the processor reports it
	if strings.TrimSpace(text) != "" {
		v.Field("country", country, common.Required, common.CountryCode)
	}
	if err := v.Err(); err != nil {
		s.logger.Warn("grpc.extract.rejected", "req_id", common.RequestIDFromContext(ctx), "error", err)
		return nil, common.ToStatusError(err)
	}

	useFallback := true
	if b, ok := args["use_fallback"].(bool); ok {
		useFallback = b
	}
	delete(args, "country")
	delete(args, "use_fallback")

	res := s.proc.Extract(ctx, args, country, s.fallbackFor(country, useFallback))
	if !res.Success {
		s.logger.Warn("grpc.extract.failed", "req_id", common.RequestIDFromContext(ctx), "country", country, "error", res.Error)
		return nil, common.ToStatusError(res.Err)
	}
	return toStruct(res)
}

// Validate expects {"payslip": <record>} and returns the validation result and
// the corrected record.
func (s *PayslipService) Validate(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	raw, ok := req.AsMap()["payslip"].(map[string]any)
	if !ok {
		return nil, status.Error(codes.InvalidArgument, "payslip object is required")
	}
	p, err := DecodePayslip(raw)
	if err != nil {
		return nil, common.InvalidArgumentErrorf("payslip: %v", err)
	}
	validation := consistency.Validate(p)
	corrected := consistency.ApplyCorrections(p, validation.Corrections)
	s.logger.Info("grpc.validate.ok",
		"req_id", common.RequestIDFromContext(ctx),
		"country", p.Country,
		"confidence", validation.Confidence,
		"corrections", len(validation.Corrections),
	)
	return toStruct(map[string]any{"validation": validation, "payslip": corrected})
}

func (s *PayslipService) SupportedCountries(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	var out []any
	for _, c := range s.proc.Countries() {
		out = append(out, string(c))
	}
	return structpb.NewStruct(map[string]any{"countries": out})
}

func (s *PayslipService) fallbackFor(country string, enabled bool) llm.FallbackFunc {
	if !enabled || s.resolver == nil {
		return nil
	}
	c, ok := constants.ParseCountry(country)
	if !ok {
		return nil
	}
	return s.resolver(c)
}

// DecodePayslip turns a JSON-shaped map into a record.
func DecodePayslip(raw map[string]any) (*entity.ExtractedPayslip, error) {
	b, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}
	var p entity.ExtractedPayslip
	if err := json.Unmarshal(b, &p); err != nil {
		return nil, err
	}
	if c, ok := constants.ParseCountry(string(p.Country)); ok {
		p.Country = c
	}
	return &p, nil
}

func toStruct(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, common.InternalErrorf("encode response: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, common.InternalErrorf("encode response: %v", err)
	}
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, common.InternalError(fmt.Sprintf("encode response: %v", err))
	}
	return out, nil
}

// RequestIDInterceptor puts the x-request-id metadata value (or a fresh one)
// on the context and logs every call.
func RequestIDInterceptor(logger *slog.Logger) grpc.UnaryServerInterceptor {
	if logger == nil {
		logger = slog.Default()
	}
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if ids := md.Get("x-request-id"); len(ids) > 0 && ids[0] != "" {
				ctx = common.WithRequestID(ctx, ids[0])
			}
		}
		ctx, reqID := common.EnsureRequestID(ctx)
		start := time.Now()
		resp, err := handler(ctx, req)
		logger.Info("grpc.request",
			"req_id", reqID,
			"method", info.FullMethod,
			"code", status.Code(err).String(),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return resp, err
	}
}

var _ PayslipServiceServer = (*PayslipService)(nil)
