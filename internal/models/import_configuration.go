package models

import (
	"time"

	"gorm.io/gorm"
)

// FileFormat is the layout family of a statement file
type FileFormat string

const (
	FileFormatDelimited   FileFormat = "DELIMITED"
	FileFormatSpreadsheet FileFormat = "SPREADSHEET"
)

// Field mapping keys
const (
	FieldDate            = "date"
	FieldAmount          = "amount"
	FieldDescription     = "description"
	FieldValueDate       = "value_date"
	FieldReference       = "reference"
	FieldTransactionType = "transaction_type"
	FieldBalance         = "balance"
)

// RequiredFields must be present in every field mapping
var RequiredFields = []string{FieldDate, FieldAmount, FieldDescription}

// OptionalFields may be present in a field mapping
var OptionalFields = []string{FieldValueDate, FieldReference, FieldTransactionType, FieldBalance}

// ImportConfiguration describes how a bank's statement files are laid out
type ImportConfiguration struct {
	ID           uint           `json:"id" gorm:"primarykey"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
	TenantID     uint           `json:"tenant_id" gorm:"not null;index"`
	Name         string         `json:"name" gorm:"type:varchar(255);not null" validate:"required,max=255"`
	BankName     string         `json:"bank_name" gorm:"type:varchar(255);not null" validate:"required,max=255"`
	FileFormat   FileFormat     `json:"file_format" gorm:"type:varchar(16);not null;default:'DELIMITED'" validate:"required,oneof=DELIMITED SPREADSHEET"`
	Delimiter    string         `json:"delimiter" gorm:"type:varchar(8);not null;default:','"`
	DateFormat   string         `json:"date_format" gorm:"type:varchar(32);not null" validate:"required"`
	HeaderRows   int            `json:"header_rows" gorm:"not null;default:1" validate:"gte=0,lte=100"`
	FieldMapping map[string]int `json:"field_mapping" gorm:"type:text;serializer:json;not null" validate:"required"`
	IsActive     bool           `json:"is_active" gorm:"not null;default:true"`
	Version      uint           `json:"version" gorm:"not null;default:0"`
}

// TableName overrides the table name used by ImportConfiguration
func (ImportConfiguration) TableName() string {
	return "import_configurations"
}

// Clone returns a detached copy without identity fields
func (c *ImportConfiguration) Clone() *ImportConfiguration {
	mapping := make(map[string]int, len(c.FieldMapping))
	for k, v := range c.FieldMapping {
		mapping[k] = v
	}
	return &ImportConfiguration{
		TenantID:     c.TenantID,
		Name:         c.Name,
		BankName:     c.BankName,
		FileFormat:   c.FileFormat,
		Delimiter:    c.Delimiter,
		DateFormat:   c.DateFormat,
		HeaderRows:   c.HeaderRows,
		FieldMapping: mapping,
		IsActive:     c.IsActive,
	}
}
