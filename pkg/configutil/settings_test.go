package configutil

import "testing"

func TestDecodeSettingsNormalizesKeys(t *testing.T) {
	var out struct {
		APIKey     string `mapstructure:"api_key"`
		SampleRate int    `mapstructure:"sample_rate"`
	}
	input := map[string]any{
		"Api-Key":     "secret",
		"sample_rate": "8000",
	}
	if err := DecodeSettings(input, &out); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if out.APIKey != "secret" {
		t.Fatalf("expected api key decoded, got %q", out.APIKey)
	}
	if out.SampleRate != 8000 {
		t.Fatalf("expected weakly typed int, got %d", out.SampleRate)
	}
}

func TestValidateSettingsReportsMissingAndUnknown(t *testing.T) {
	schema := Schema{Required: []string{"api_key"}, Optional: []string{"model"}}
	err := ValidateSettings(map[string]any{"bogus": 1}, schema)
	if err == nil {
		t.Fatalf("expected validation error")
	}
	if got := err.Error(); got != "missing: api_key; unknown: bogus" {
		t.Fatalf("unexpected error message: %q", got)
	}
}

func TestValidateSettingsAcceptsNormalizedKeys(t *testing.T) {
	schema := Schema{Required: []string{"api_key"}}
	if err := ValidateSettings(map[string]any{"API-KEY": "x"}, schema); err != nil {
		t.Fatalf("expected normalized key accepted: %v", err)
	}
}
