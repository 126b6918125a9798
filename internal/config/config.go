package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/insightdelivered/marksheet-reader/internal/models"
	"github.com/insightdelivered/marksheet-reader/internal/parser"
	"github.com/insightdelivered/marksheet-reader/internal/score"
)

const defaultConfigFile = "marksheet.json"

// OCR engine names.
const (
	EngineTesseract = "tesseract"
	EngineRemote    = "remote"
	EngineGemini    = "gemini"
)

// OCRConfig selects and configures the recognition engine used for images.
type OCRConfig struct {
	Engine         string   `json:"engine"`
	Languages      []string `json:"languages"`
	RemoteURL      string   `json:"remoteUrl,omitempty"`
	TimeoutSeconds int      `json:"timeoutSeconds"`
	GeminiAPIKey   string   `json:"geminiApiKey,omitempty"`
	GeminiModel    string   `json:"geminiModel,omitempty"`
}

// Config is the runtime configuration of the CLI and the HTTP service.
type Config struct {
	Port   string `json:"port"`
	BestOf int    `json:"bestOf"`
	// Streams is keyed by stream id, e.g. "btech_cse".
	Streams map[string]models.StreamCutoff `json:"streams"`
	// NoiseWords extends parser.DefaultNoiseWords.
	NoiseWords    []string  `json:"noiseWords,omitempty"`
	MinSubjectLen int       `json:"minSubjectLen"`
	OCR           OCRConfig `json:"ocr"`
}

// Default returns the built-in configuration.
func Default() Config {
	var cfg Config
	cfg.ApplyDefaults()
	return cfg
}

// DefaultCutoffs returns a fresh copy of the built-in stream cutoff table.
func DefaultCutoffs() models.CutoffTable {
	table := models.CutoffTable{}
	for _, c := range []models.StreamCutoff{
		{ID: "btech_cse", DisplayName: "B. Tech CSE", Cutoff: 85},
		{ID: "btech_it", DisplayName: "B. Tech IT", Cutoff: 80},
		{ID: "btech_ece", DisplayName: "B. Tech ECE", Cutoff: 78},
		{ID: "btech_mech", DisplayName: "B. Tech Mechanical", Cutoff: 75},
		{ID: "btech_civil", DisplayName: "B. Tech Civil", Cutoff: 72},
		{ID: "bca", DisplayName: "BCA", Cutoff: 70},
		{ID: "mca", DisplayName: "MCA", Cutoff: 75},
		{ID: "mba", DisplayName: "MBA", Cutoff: 70},
		{ID: "bsc_cs", DisplayName: "B.Sc Computer Science", Cutoff: 65},
		{ID: "bcom", DisplayName: "B.Com", Cutoff: 60},
	} {
		table[c.ID] = c
	}
	return table
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if strings.TrimSpace(c.Port) == "" {
		c.Port = "8080"
	}
	if c.BestOf <= 0 {
		c.BestOf = score.DefaultBestOf
	}
	if len(c.Streams) == 0 {
		c.Streams = DefaultCutoffs()
	}
	for id, s := range c.Streams {
		s.ID = id
		c.Streams[id] = s
	}
	if c.MinSubjectLen <= 0 {
		c.MinSubjectLen = parser.DefaultMinSubjectLen
	}
	c.OCR.Engine = strings.ToLower(strings.TrimSpace(c.OCR.Engine))
	if c.OCR.Engine == "" {
		c.OCR.Engine = EngineTesseract
	}
	if len(c.OCR.Languages) == 0 {
		c.OCR.Languages = []string{"eng"}
	}
	if c.OCR.TimeoutSeconds <= 0 {
		c.OCR.TimeoutSeconds = 60
	}
	if c.OCR.GeminiModel == "" {
		c.OCR.GeminiModel = "gemini-2.5-flash"
	}
}

// Load reads the JSON config at path (or marksheet.json when empty), then
// applies environment overrides. A missing file is not an error.
func Load(path string) (Config, error) {
	if path == "" {
		path = getEnv("MARKSHEET_CONFIG", defaultConfigFile)
	}

	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("decode config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return cfg, fmt.Errorf("read config: %w", err)
	}

	applyEnv(&cfg)
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects configurations the service cannot run with.
func (c Config) Validate() error {
	switch c.OCR.Engine {
	case EngineTesseract, EngineGemini:
	case EngineRemote:
		if c.OCR.RemoteURL == "" {
			return fmt.Errorf("ocr engine %q requires remoteUrl (or OCR_REMOTE_URL)", c.OCR.Engine)
		}
	default:
		return fmt.Errorf("unknown ocr engine %q (use tesseract, remote or gemini)", c.OCR.Engine)
	}
	for id, s := range c.Streams {
		if s.Cutoff < 0 || s.Cutoff > 100 {
			return fmt.Errorf("stream %q: cutoff %v out of range 0-100", id, s.Cutoff)
		}
	}
	return nil
}

func applyEnv(c *Config) {
	c.Port = getEnv("PORT", c.Port)
	if v := getEnv("MARKSHEET_BEST_OF", ""); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.BestOf = n
		}
	}
	c.OCR.Engine = getEnv("OCR_ENGINE", c.OCR.Engine)
	if v := getEnv("OCR_LANGS", ""); v != "" {
		c.OCR.Languages = splitList(v)
	}
	c.OCR.RemoteURL = getEnv("OCR_REMOTE_URL", c.OCR.RemoteURL)
	c.OCR.GeminiAPIKey = getEnv("GEMINI_API_KEY", c.OCR.GeminiAPIKey)
	c.OCR.GeminiModel = getEnv("GEMINI_MODEL", c.OCR.GeminiModel)
}

func getEnv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Cutoffs returns a copy of the stream cutoff table.
func (c Config) Cutoffs() models.CutoffTable {
	table := make(models.CutoffTable, len(c.Streams))
	for id, s := range c.Streams {
		table[id] = s
	}
	return table
}

// SortedStreams lists the streams by descending cutoff, then id.
func (c Config) SortedStreams() []models.StreamCutoff {
	return SortStreams(c.Streams)
}

// SortStreams lists a cutoff table by descending cutoff, then id.
func SortStreams(table models.CutoffTable) []models.StreamCutoff {
	out := make([]models.StreamCutoff, 0, len(table))
	for _, s := range table {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Cutoff != out[j].Cutoff {
			return out[i].Cutoff > out[j].Cutoff
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Rules returns the extraction rules: the default noise words plus any
// configured extras.
func (c Config) Rules() parser.Rules {
	rules := parser.DefaultRules().WithNoiseWords(c.NoiseWords...)
	if c.MinSubjectLen > 0 {
		rules.MinSubjectLen = c.MinSubjectLen
	}
	return rules
}
