package api

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"

	"github.com/insightdelivered/marksheet-reader/internal/config"
	"github.com/insightdelivered/marksheet-reader/internal/extractor"
	"github.com/insightdelivered/marksheet-reader/internal/marksheet"
	"github.com/insightdelivered/marksheet-reader/internal/models"
	"github.com/insightdelivered/marksheet-reader/internal/ocr"
	"github.com/insightdelivered/marksheet-reader/internal/score"
)

// Version is reported by /api/health.
const Version = "1.0.0"

// maxUpload bounds uploaded scans (32MB).
const maxUpload = 32 << 20

// ScanResponse is the JSON response of /api/ocr and /api/evaluate.
type ScanResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	ScanID  string `json:"scanId,omitempty"`
	Version string `json:"version,omitempty"`
	*marksheet.Report
}

// EvaluateRequest is the body of /api/evaluate (manual entry).
type EvaluateRequest struct {
	Subjects  *models.SubjectMarks `json:"subjects"`
	Stream    string               `json:"stream"`
	K         int                  `json:"k"`
	ClassType string               `json:"classType"`
}

type textRequest struct {
	Text      string `json:"text"`
	Stream    string `json:"stream"`
	K         int    `json:"k"`
	ClassType string `json:"classType"`
	Debug     bool   `json:"debug"`
}

// Handler holds the HTTP handlers for the API.
type Handler struct {
	Reader    *marksheet.Reader
	Engine    ocr.Engine // nil disables image uploads
	Languages []string
	StaticDir string
}

// NewApp returns a Fiber app with the API routes and middleware installed.
func NewApp(h *Handler) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "marksheet-reader",
		BodyLimit:    maxUpload,
		ErrorHandler: errorHandler,
	})
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "POST, GET, OPTIONS",
		AllowHeaders: "Content-Type",
	}))
	h.RegisterRoutes(app)
	return app
}

// RegisterRoutes sets up the HTTP routes.
func (h *Handler) RegisterRoutes(app *fiber.App) {
	app.Get("/api/health", h.HandleHealth)
	app.Get("/api/streams", h.HandleStreams)
	app.Get("/api/subjects/:class", h.HandleSubjects)
	app.Post("/api/ocr", h.HandleOCR)
	app.Post("/api/evaluate", h.HandleEvaluate)

	if h.StaticDir != "" {
		app.Static("/", h.StaticDir)
	}
}

func (h *Handler) HandleHealth(c *fiber.Ctx) error {
	engine := ""
	if h.Engine != nil {
		engine = h.Engine.Name()
	}
	return c.JSON(fiber.Map{
		"status":    "ok",
		"engine":    "fiber",
		"ocrEngine": engine,
		"version":   Version,
	})
}

func (h *Handler) HandleStreams(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"streams": config.SortStreams(h.Reader.Cutoffs()),
	})
}

func (h *Handler) HandleSubjects(c *fiber.Ctx) error {
	class, err := models.ParseClassType(c.Params("class"))
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, err.Error())
	}
	return c.JSON(fiber.Map{
		"classType": class,
		"subjects":  models.DefaultSubjects(class),
	})
}

// HandleOCR reads a marksheet from an uploaded image or PDF (form field
// "file"), or from already recognised text (field or JSON key "text").
func (h *Handler) HandleOCR(c *fiber.Ctx) error {
	req, err := parseTextRequest(c)
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, err.Error())
	}
	opts, err := buildRequest(req.Stream, req.K, req.ClassType, req.Debug)
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, err.Error())
	}

	var rep *marksheet.Report
	if fh, ferr := c.FormFile("file"); ferr == nil {
		data, err := readUpload(fh)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "Failed to read uploaded file.")
		}
		rep, err = h.reportFromUpload(c, data, opts)
		if err != nil {
			return writeReadError(c, err)
		}
		rep.Source = fh.Filename
	} else if strings.TrimSpace(req.Text) != "" {
		rep, err = h.Reader.Evaluate(req.Text, opts)
		if err != nil {
			return writeReadError(c, err)
		}
	} else {
		return writeError(c, fiber.StatusBadRequest, "No file uploaded. Use form field 'file' or provide 'text'.")
	}

	return c.JSON(ScanResponse{
		Success: true,
		ScanID:  uuid.NewString(),
		Version: Version,
		Report:  rep,
	})
}

// HandleEvaluate scores marks entered by hand.
func (h *Handler) HandleEvaluate(c *fiber.Ctx) error {
	var req EvaluateRequest
	if err := c.BodyParser(&req); err != nil {
		return writeError(c, fiber.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
	}
	opts, err := buildRequest(req.Stream, req.K, req.ClassType, false)
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, err.Error())
	}

	rep, err := h.Reader.EvaluateMarks(req.Subjects, opts)
	if err != nil {
		return writeReadError(c, err)
	}
	return c.JSON(ScanResponse{
		Success: true,
		ScanID:  uuid.NewString(),
		Version: Version,
		Report:  rep,
	})
}

func (h *Handler) reportFromUpload(c *fiber.Ctx, data []byte, opts marksheet.Request) (*marksheet.Report, error) {
	mime := ocr.SniffMime(data)
	switch {
	case mime == "application/pdf":
		text, err := h.pdfText(c, data)
		if err != nil {
			return nil, err
		}
		return h.Reader.Evaluate(text, opts)
	case ocr.IsImageMime(mime):
		if h.Engine == nil {
			return nil, errNoEngine
		}
		img := ocr.Image{Data: data, MimeType: mime, Languages: h.Languages}
		return h.Reader.Scan(c.UserContext(), h.Engine, img, opts)
	case strings.HasPrefix(mime, "text/plain"):
		return h.Reader.Evaluate(string(data), opts)
	default:
		return nil, fmt.Errorf("%w: %s", errUnsupportedUpload, mime)
	}
}

func (h *Handler) pdfText(c *fiber.Ctx, data []byte) (string, error) {
	tmpFile, err := os.CreateTemp("", "marksheet-*.pdf")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmpFile.Name())
	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return "", fmt.Errorf("save upload: %w", err)
	}
	tmpFile.Close()

	text, err := extractor.ExtractTextCombined(c.UserContext(), tmpFile.Name(), h.Languages...)
	if err != nil {
		return "", fmt.Errorf("%w: %v", errPDF, err)
	}
	return text, nil
}

var (
	errNoEngine          = errors.New("image OCR is not configured on this server")
	errUnsupportedUpload = errors.New("unsupported file type")
	errPDF               = errors.New("PDF extraction failed")
)

func parseTextRequest(c *fiber.Ctx) (textRequest, error) {
	var req textRequest
	if c.Is("json") {
		if err := c.BodyParser(&req); err != nil {
			return req, fmt.Errorf("Invalid request body: %v", err)
		}
		return req, nil
	}
	req.Text = c.FormValue("text")
	req.Stream = c.FormValue("stream")
	req.ClassType = c.FormValue("classType")
	req.Debug = c.FormValue("debug") == "true"
	if k := c.FormValue("k"); k != "" {
		n, err := strconv.Atoi(k)
		if err != nil {
			return req, fmt.Errorf("Invalid k: %q", k)
		}
		req.K = n
	}
	return req, nil
}

func buildRequest(stream string, k int, classType string, debug bool) (marksheet.Request, error) {
	opts := marksheet.Request{Stream: strings.TrimSpace(stream), K: k, Trace: debug}
	if k < 0 {
		return opts, fmt.Errorf("k must be positive, got %d", k)
	}
	if classType != "" {
		class, err := models.ParseClassType(classType)
		if err != nil {
			return opts, err
		}
		opts.Class = class
	}
	return opts, nil
}

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(io.LimitReader(f, maxUpload))
}

func writeReadError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, score.ErrInvalidStream):
		return writeError(c, fiber.StatusBadRequest, "Invalid stream selected")
	case errors.Is(err, ocr.ErrNoText):
		return writeError(c, fiber.StatusUnprocessableEntity, "Could not detect clear marks. Please check image quality or enter manually.")
	case errors.Is(err, errUnsupportedUpload):
		return writeError(c, fiber.StatusUnsupportedMediaType, err.Error())
	case errors.Is(err, errNoEngine):
		return writeError(c, fiber.StatusServiceUnavailable, err.Error())
	case errors.Is(err, errPDF):
		return writeError(c, fiber.StatusUnprocessableEntity, err.Error())
	default:
		return writeError(c, fiber.StatusBadGateway, fmt.Sprintf("OCR failed: %v", err))
	}
}

func writeError(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(ScanResponse{
		Success: false,
		Error:   msg,
	})
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	return writeError(c, code, err.Error())
}
