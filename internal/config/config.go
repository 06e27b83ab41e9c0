// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
)

// Default values applied by MergeWithDefaults when the config file and flags
// leave a field unset.
const (
	DefaultMinSupport     = 50
	DefaultTopK           = 100
	DefaultScoreThreshold = 0.1
	DefaultWorkers        = 4
	DefaultMemoryLimit    = "8GB"
)

// Config represents the pipeline configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Input locations
	PostingsRoot   string `json:"postings_root,omitempty"`   // Root directory holding one subdirectory per year
	PostingsSubdir string `json:"postings_subdir,omitempty"` // Subdirectory under each year that holds the posting files
	PostingsExt    string `json:"postings_ext,omitempty"`    // File extension of posting files (without dot)
	ResumePath     string `json:"resume_path,omitempty"`     // Path to the merged résumé CSV
	KeywordPath    string `json:"keyword_path,omitempty"`    // Keyword file for résumé classification (defaults to the top skills artifact)

	// Output locations
	OutDir     string `json:"out_dir,omitempty"`     // Directory for artifacts and stage reports
	ScratchDir string `json:"scratch_dir,omitempty"` // Directory for spill files (defaults to OutDir/scratch)

	// Year range processed by per-year stages (inclusive)
	YearFrom int `json:"year_from,omitempty" validate:"omitempty,min=1900,max=2100"`
	YearTo   int `json:"year_to,omitempty" validate:"omitempty,min=1900,max=2100"`

	// Posting input columns
	JobIDColumn       string `json:"job_id_column,omitempty"`
	CompanyColumn     string `json:"company_column,omitempty"`
	CompanyNameColumn string `json:"company_name_column,omitempty"`
	SkillsColumn      string `json:"skills_column,omitempty"`

	// Résumé input columns
	ResumeIDColumn          string `json:"resume_id_column,omitempty"`
	ResumeTitleColumn       string `json:"resume_title_column,omitempty"`
	ResumeCompanyColumn     string `json:"resume_company_column,omitempty"`
	ResumeDescriptionColumn string `json:"resume_description_column,omitempty"`
	ResumeStartColumn       string `json:"resume_start_column,omitempty"`
	ResumeEndColumn         string `json:"resume_end_column,omitempty"`
	ResumeCurrentColumn     string `json:"resume_current_column,omitempty"`

	// Scoring behavior
	SkillDelimiter   string   `json:"skill_delimiter,omitempty"`
	AITerms          []string `json:"ai_terms,omitempty"`           // Seed vocabulary override; empty uses the built-in terms
	ExcludeSeedTerms bool     `json:"exclude_seed_terms,omitempty"` // Drop the seed terms themselves from skill count output
	MinSupport       *int64   `json:"min_support,omitempty"`        // Minimum total_cnt before ranking; explicit 0 disables the filter
	TopK             int      `json:"top_k,omitempty" validate:"omitempty,min=1"`
	ScoreThreshold   float64  `json:"score_threshold,omitempty" validate:"omitempty,gt=0,lte=1"`

	// Résumé expansion behavior
	MissingEnd    string `json:"missing_end,omitempty" validate:"omitempty,oneof=current-year drop"`
	ReferenceYear int    `json:"reference_year,omitempty" validate:"omitempty,min=1900,max=2100"`

	// Output format
	SaveAs string `json:"save_as,omitempty" validate:"omitempty,oneof=csv jsonl"`

	// Resources
	Workers     int    `json:"workers,omitempty" validate:"omitempty,min=1"`
	MemoryLimit string `json:"memory_limit,omitempty"` // Working-set cap shared by concurrent stage workers, e.g. "8GB"

	// Behavior
	Verbose     bool   `json:"verbose,omitempty"`      // Print detailed progress and artifact samples
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL for the optional run catalog
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required fields since those depend on which
// stage runs; each stage verifies its own inputs after merging.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	if c.YearFrom != 0 && c.YearTo != 0 && c.YearFrom > c.YearTo {
		return fmt.Errorf("config error: 'year_from' (%d) is after 'year_to' (%d)", c.YearFrom, c.YearTo)
	}

	if c.MinSupport != nil && *c.MinSupport < 0 {
		return fmt.Errorf("config error: 'min_support' must be non-negative")
	}

	if c.MemoryLimit != "" {
		if _, err := ParseMemoryLimit(c.MemoryLimit); err != nil {
			return fmt.Errorf("config error: invalid 'memory_limit': %w", err)
		}
	}

	// Validate input locations exist (if specified)
	if c.PostingsRoot != "" {
		if _, err := os.Stat(c.PostingsRoot); os.IsNotExist(err) {
			return fmt.Errorf("config error: postings root not found: %s", c.PostingsRoot)
		}
	}

	if c.ResumePath != "" {
		if _, err := os.Stat(c.ResumePath); os.IsNotExist(err) {
			return fmt.Errorf("config error: résumé file not found: %s", c.ResumePath)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.PostingsRoot == "" {
		result.PostingsRoot = defaults.PostingsRoot
	}
	if result.PostingsSubdir == "" {
		result.PostingsSubdir = defaults.PostingsSubdir
	}
	if result.PostingsExt == "" {
		result.PostingsExt = defaults.PostingsExt
	}
	if result.ResumePath == "" {
		result.ResumePath = defaults.ResumePath
	}
	if result.KeywordPath == "" {
		result.KeywordPath = defaults.KeywordPath
	}
	if result.OutDir == "" {
		result.OutDir = defaults.OutDir
	}
	if result.ScratchDir == "" {
		result.ScratchDir = defaults.ScratchDir
	}
	if result.JobIDColumn == "" {
		result.JobIDColumn = defaults.JobIDColumn
	}
	if result.CompanyColumn == "" {
		result.CompanyColumn = defaults.CompanyColumn
	}
	if result.CompanyNameColumn == "" {
		result.CompanyNameColumn = defaults.CompanyNameColumn
	}
	if result.SkillsColumn == "" {
		result.SkillsColumn = defaults.SkillsColumn
	}
	if result.ResumeIDColumn == "" {
		result.ResumeIDColumn = defaults.ResumeIDColumn
	}
	if result.ResumeTitleColumn == "" {
		result.ResumeTitleColumn = defaults.ResumeTitleColumn
	}
	if result.ResumeCompanyColumn == "" {
		result.ResumeCompanyColumn = defaults.ResumeCompanyColumn
	}
	if result.ResumeDescriptionColumn == "" {
		result.ResumeDescriptionColumn = defaults.ResumeDescriptionColumn
	}
	if result.ResumeStartColumn == "" {
		result.ResumeStartColumn = defaults.ResumeStartColumn
	}
	if result.ResumeEndColumn == "" {
		result.ResumeEndColumn = defaults.ResumeEndColumn
	}
	if result.ResumeCurrentColumn == "" {
		result.ResumeCurrentColumn = defaults.ResumeCurrentColumn
	}
	if result.SkillDelimiter == "" {
		result.SkillDelimiter = defaults.SkillDelimiter
	}
	if result.MissingEnd == "" {
		result.MissingEnd = defaults.MissingEnd
	}
	if result.SaveAs == "" {
		result.SaveAs = defaults.SaveAs
	}
	if result.MemoryLimit == "" {
		result.MemoryLimit = defaults.MemoryLimit
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}

	// Slice fields: use default if empty
	if len(result.AITerms) == 0 {
		result.AITerms = defaults.AITerms
	}

	// Int fields: use default if zero
	if result.YearFrom == 0 {
		result.YearFrom = defaults.YearFrom
	}
	if result.YearTo == 0 {
		result.YearTo = defaults.YearTo
	}
	if result.TopK == 0 {
		result.TopK = defaults.TopK
	}
	if result.Workers == 0 {
		result.Workers = defaults.Workers
	}
	if result.ReferenceYear == 0 {
		result.ReferenceYear = defaults.ReferenceYear
	}

	// Pointer fields: nil means unset; an explicit 0 survives the merge
	if result.MinSupport == nil {
		result.MinSupport = defaults.MinSupport
	}

	// Float fields
	if result.ScoreThreshold == 0 {
		if defaults.ScoreThreshold > 0 {
			result.ScoreThreshold = defaults.ScoreThreshold
		} else {
			result.ScoreThreshold = DefaultScoreThreshold
		}
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// MinSupportValue returns the effective minimum support filter.
// nil means the default; an explicit 0 disables the filter.
func (c *Config) MinSupportValue() int64 {
	if c.MinSupport == nil {
		return DefaultMinSupport
	}
	return *c.MinSupport
}

// Defaults returns the baseline configuration used by every stage command.
func Defaults() Config {
	return Config{
		PostingsSubdir:          "postings",
		PostingsExt:             "csv",
		JobIDColumn:             "job_id",
		CompanyColumn:           "company",
		CompanyNameColumn:       "company_name",
		SkillsColumn:            "skills_name",
		ResumeIDColumn:          "id",
		ResumeTitleColumn:       "title_name",
		ResumeCompanyColumn:     "company_name",
		ResumeDescriptionColumn: "description",
		ResumeStartColumn:       "start_date",
		ResumeEndColumn:         "end_date",
		ResumeCurrentColumn:     "is_current",
		SkillDelimiter:          "|",
		TopK:                    DefaultTopK,
		ScoreThreshold:          DefaultScoreThreshold,
		MissingEnd:              "current-year",
		SaveAs:                  "csv",
		Workers:                 DefaultWorkers,
		MemoryLimit:             DefaultMemoryLimit,
	}
}
