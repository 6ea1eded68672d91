package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestNewTagsComponent(t *testing.T) {
	var buf bytes.Buffer
	saved := log.Logger
	defer func() { log.Logger = saved }()
	log.Logger = zerolog.New(&buf)

	logger := New("dashboard")
	logger.Info().Str(COLLECTION, "orders").Msg("fetched")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v: %s", err, buf.String())
	}
	if entry[COMPONENT] != "dashboard" || entry[COLLECTION] != "orders" {
		t.Errorf("log entry = %v", entry)
	}
}

func TestInitLevel(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"WARN", zerolog.WarnLevel},
		{"", zerolog.InfoLevel},
		{"loud", zerolog.InfoLevel},
	}
	saved := log.Logger
	defer func() { log.Logger = saved }()
	for _, tt := range tests {
		Init(tt.in)
		if got := zerolog.GlobalLevel(); got != tt.want {
			t.Errorf("Init(%q) level = %v, want %v", tt.in, got, tt.want)
		}
	}
}
