package entity

import "github.com/uptrace/bun"

// Setting is one row of the flat key/value configuration table. Values are
// stored as strings; typed parsing lives in the settings service.
type Setting struct {
	bun.BaseModel `bun:"table:settings"`

	Key   string `bun:"key,pk"`
	Value string `bun:"value"`
}
