package shared

import (
	"testing"
)

func TestDecode(t *testing.T) {
	type toolArgs struct {
		Topic  string `json:"topic"`
		APIKey string `json:"api_key"`
	}

	tests := []struct {
		name    string
		input   map[string]any
		want    toolArgs
		wantErr bool
	}{
		{
			name:  "valid map",
			input: map[string]any{"topic": "Yapay zeka", "api_key": "sk-1"},
			want:  toolArgs{Topic: "Yapay zeka", APIKey: "sk-1"},
		},
		{
			name:  "numeric topic",
			input: map[string]any{"topic": 2024.0},
			want:  toolArgs{Topic: "2024"},
		},
		{
			name:  "empty map",
			input: map[string]any{},
			want:  toolArgs{},
		},
		{
			name:  "unknown fields ignored",
			input: map[string]any{"topic": "Go", "extra": true},
			want:  toolArgs{Topic: "Go"},
		},
		{
			name:    "object topic",
			input:   map[string]any{"topic": map[string]any{"a": 1}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got toolArgs
			err := Decode(tt.input, &got)
			if (err != nil) != tt.wantErr {
				t.Errorf("Decode() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("Decode() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
