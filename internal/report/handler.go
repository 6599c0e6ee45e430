package report

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/redmonkez12/healthmate-api/internal/config"
	"github.com/redmonkez12/healthmate-api/internal/httputil"
	"github.com/redmonkez12/healthmate-api/internal/logging"
)

const (
	MaxUploadSize = 20 << 20
	// base64 inflates the payload by a third
	maxJSONBody   = MaxUploadSize/3*4 + 1<<10
	maxFormMemory = 8 << 20
	tokenTTL      = time.Hour
)

var errTooLarge = fmt.Errorf("document exceeds %d bytes", MaxUploadSize)

// the only detail a caller sees when a URL download fails
const msgFetchFailed = "Failed to fetch URL"

// TokenSigner signs an arbitrary claim set.
type TokenSigner interface {
	SignPayload(payload map[string]any, ttl time.Duration) (string, error)
}

// Handler serves the report endpoints: PDF text extraction and summaries.
type Handler struct {
	signer TokenSigner
	client *http.Client
}

// NewHandler builds the report handler. signer may be nil, in which case
// token requests on /summary report a tokenError. client is used to fetch
// PDFs by URL and defaults to NewFetchClient.
func NewHandler(signer TokenSigner, client *http.Client) *Handler {
	if client == nil {
		client = NewFetchClient()
	}
	return &Handler{signer: signer, client: client}
}

type ParsePDFRequest struct {
	URL    string `json:"url,omitempty"`
	Base64 string `json:"base64,omitempty"`
}

type ParsePDFResponse struct {
	Text string `json:"text"`
}

type SummaryRequest struct {
	Text         any  `json:"text"`
	CreateToken  bool `json:"createToken,omitempty"`
	TokenPayload any  `json:"tokenPayload,omitempty"`
}

type SummaryResponse struct {
	Summary    string    `json:"summary"`
	Insights   []Insight `json:"insights"`
	Token      string    `json:"token,omitempty"`
	TokenError string    `json:"tokenError,omitempty"`
}

// ParsePDF extracts the text of an uploaded PDF
// @Summary      Extract PDF text
// @Description  Accepts multipart form-data with a "file" field, or JSON with "base64" or "url".
// @Tags         reports
// @Accept       mpfd,json
// @Produce      json
// @Param        file formData file false "PDF document"
// @Param        request body ParsePDFRequest false "Base64 data or a URL"
// @Success      200 {object} ParsePDFResponse
// @Failure      400 {object} httputil.ErrorResponse
// @Failure      415 {object} httputil.ErrorResponse
// @Failure      500 {object} httputil.ErrorResponse
// @Router       /parse-pdf [post]
func (h *Handler) ParsePDF(w http.ResponseWriter, r *http.Request) {
	logger := logging.FromContext(r.Context())

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	var (
		data []byte
		err  error
	)
	switch mediaType {
	case "multipart/form-data":
		data, err = h.readUpload(w, r)
	case "application/json":
		data, err = h.readJSONDocument(r)
	default:
		httputil.RespondError(w, "Unsupported content-type. Use multipart/form-data with 'file' or JSON with 'base64'", http.StatusUnsupportedMediaType)
		return
	}
	if err != nil {
		var inputErr *inputError
		if errors.As(err, &inputErr) {
			logger.Warn("pdf input rejected", "error", err, "cause", inputErr.err)
			httputil.RespondError(w, inputErr.Error(), http.StatusBadRequest)
			return
		}
		logger.Error("failed to read pdf input", "error", err)
		httputil.RespondError(w, "PDF parse failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	text, err := ExtractText(data)
	if err != nil {
		if errors.Is(err, ErrEmptyDocument) || errors.Is(err, ErrNotPDF) || errors.Is(err, ErrInvalidPDF) {
			logger.Warn("pdf rejected", "error", err)
			httputil.RespondError(w, err.Error(), http.StatusBadRequest)
			return
		}
		logger.Error("pdf extraction failed", "error", err)
		httputil.RespondError(w, "PDF parse failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	logger.Info("pdf parsed", "bytes", len(data), "chars", len(text))
	httputil.RespondJSON(w, ParsePDFResponse{Text: text}, http.StatusOK)
}

// inputError is a client mistake in the /parse-pdf request.
type inputError struct {
	msg string
	err error
}

func (e *inputError) Error() string { return e.msg }
func (e *inputError) Unwrap() error { return e.err }

func badInput(msg string, err error) error {
	return &inputError{msg: msg, err: err}
}

func (h *Handler) readUpload(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize+1<<20)
	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, badInput(errTooLarge.Error(), err)
		}
		return nil, badInput("Invalid multipart form", err)
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		return nil, badInput("Missing file in form-data under key 'file'", err)
	}
	defer file.Close()

	return readLimited(file)
}

func (h *Handler) readJSONDocument(r *http.Request) ([]byte, error) {
	var req ParsePDFRequest
	if err := httputil.DecodeJSON(r, &req, maxJSONBody); err != nil {
		return nil, badInput("Invalid JSON body", err)
	}

	if target := strings.TrimSpace(req.URL); target != "" {
		return h.fetch(r.Context(), target)
	}

	if req.Base64 == "" {
		return nil, badInput("Missing 'url' or 'base64' in JSON body", nil)
	}

	data, err := base64.StdEncoding.DecodeString(strings.Join(strings.Fields(req.Base64), ""))
	if err != nil {
		return nil, badInput("Invalid base64 data", err)
	}
	if len(data) > MaxUploadSize {
		return nil, badInput(errTooLarge.Error(), nil)
	}
	return data, nil
}

func (h *Handler) fetch(ctx context.Context, target string) ([]byte, error) {
	u, err := url.Parse(target)
	if err != nil {
		return nil, badInput("Invalid URL", err)
	}
	if err := validateFetchURL(u); err != nil {
		return nil, badInput("Invalid URL", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, badInput("Invalid URL", err)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, badInput(msgFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, badInput(msgFetchFailed, fmt.Errorf("upstream status %d", resp.StatusCode))
	}

	data, err := readLimited(resp.Body)
	if err != nil {
		var inputErr *inputError
		if errors.As(err, &inputErr) {
			return nil, err
		}
		return nil, badInput(msgFetchFailed, err)
	}
	return data, nil
}

func readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxUploadSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > MaxUploadSize {
		return nil, badInput(errTooLarge.Error(), nil)
	}
	return data, nil
}

// Summary summarizes report text
// @Summary      Summarize report text
// @Description  Returns a short summary and a few insights. With createToken the response also carries a signed token (1h) over tokenPayload.
// @Tags         reports
// @Accept       json
// @Produce      json
// @Param        request body SummaryRequest true "Report text"
// @Success      200 {object} SummaryResponse
// @Failure      400 {object} httputil.ErrorResponse
// @Router       /summary [post]
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	logger := logging.FromContext(r.Context())

	var req SummaryRequest
	if err := httputil.DecodeJSON(r, &req, maxJSONBody); err != nil {
		logger.Warn("invalid summary request body", "error", err)
		httputil.RespondError(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	text := strings.TrimSpace(textValue(req.Text))
	if text == "" {
		httputil.RespondError(w, "No text provided", http.StatusBadRequest)
		return
	}

	resp := SummaryResponse{
		Summary:  GenerateSummary(text),
		Insights: ExtractInsights(text),
	}

	if req.CreateToken {
		resp.Token, resp.TokenError = h.signToken(r.Context(), req.TokenPayload)
	}

	httputil.RespondJSON(w, resp, http.StatusOK)
}

func (h *Handler) signToken(ctx context.Context, payload any) (token, tokenErr string) {
	if h.signer == nil {
		return "", "JWT_SECRET not configured on server"
	}

	claims, ok := payload.(map[string]any)
	if !ok {
		claims = map[string]any{}
	}

	token, err := h.signer.SignPayload(claims, tokenTTL)
	if err != nil {
		if errors.Is(err, config.ErrConfig) {
			return "", "JWT_SECRET not configured on server"
		}
		logging.FromContext(ctx).Error("failed to sign summary token", "error", err)
		return "", "Failed to create token"
	}
	return token, ""
}

func textValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}
