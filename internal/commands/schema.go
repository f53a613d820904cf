package commands

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/limistah/bank-reconciliation/internal/models"
	"github.com/limistah/bank-reconciliation/internal/statement"
)

// schemaFile is the YAML form of an import configuration
type schemaFile struct {
	Name         string         `yaml:"name"`
	BankName     string         `yaml:"bank_name"`
	FileFormat   string         `yaml:"file_format"`
	Delimiter    string         `yaml:"delimiter"`
	DateFormat   string         `yaml:"date_format"`
	HeaderRows   *int           `yaml:"header_rows"`
	FieldMapping map[string]int `yaml:"field_mapping"`
}

func loadSchema(path string) (*models.ImportConfiguration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading schema: %w", err)
	}

	var f schemaFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing schema %s: %w", path, err)
	}

	cfg := &models.ImportConfiguration{
		Name:         f.Name,
		BankName:     f.BankName,
		FileFormat:   models.FileFormat(f.FileFormat),
		Delimiter:    f.Delimiter,
		DateFormat:   f.DateFormat,
		HeaderRows:   1,
		FieldMapping: f.FieldMapping,
	}
	if cfg.FileFormat == "" {
		cfg.FileFormat = models.FileFormatDelimited
	}
	if cfg.FileFormat == models.FileFormatDelimited && cfg.Delimiter == "" {
		cfg.Delimiter = ","
	}
	if f.HeaderRows != nil {
		cfg.HeaderRows = *f.HeaderRows
	}

	if problems := statement.CheckSchema(statement.SchemaFromConfiguration(cfg)); len(problems) > 0 {
		msg := fmt.Sprintf("schema %s is invalid:", path)
		for _, p := range problems {
			msg += "\n  " + p.String()
		}
		return nil, errors.New(msg)
	}
	return cfg, nil
}
