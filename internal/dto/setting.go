package dto

import "github.com/sari-pos/sari/internal/entity"

// SettingResponse represents one settings row.
type SettingResponse struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// FromSettings maps settings rows onto response shapes.
func FromSettings(rows []entity.Setting) []SettingResponse {
	out := make([]SettingResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, SettingResponse{Key: r.Key, Value: r.Value})
	}
	return out
}
