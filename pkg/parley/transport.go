package parley

import (
	"fmt"
	"strings"

	"github.com/mkhalish/parley/pkg/configutil"
	"github.com/mkhalish/parley/pkg/transports"
	mocktransport "github.com/mkhalish/parley/pkg/transports/mock"
	twiliotransport "github.com/mkhalish/parley/pkg/transports/twilio"
)

type twilioSettings struct {
	AccountSID         string   `mapstructure:"account_sid"`
	AuthToken          string   `mapstructure:"auth_token"`
	PublicURL          string   `mapstructure:"public_url"`
	ServerAddr         string   `mapstructure:"server_addr"`
	VoicePath          string   `mapstructure:"voice_path"`
	WebsocketPath      string   `mapstructure:"ws_path"`
	StatusCallbackPath string   `mapstructure:"status_callback_path"`
	AllowAnyOrigin     bool     `mapstructure:"allow_any_origin"`
	AllowedOrigins     []string `mapstructure:"allowed_origins"`
}

// BuildTransport constructs the transport named in the config.
func BuildTransport(cfg Config) (transports.Transport, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Transports.Provider)) {
	case "twilio":
		if err := validateSettings("transports.settings", cfg.Transports.Settings, configutil.Schema{
			Required: []string{"account_sid", "auth_token"},
			Optional: []string{"public_url", "server_addr", "voice_path", "ws_path", "status_callback_path", "allow_any_origin", "allowed_origins"},
		}); err != nil {
			return nil, err
		}
		var settings twilioSettings
		if err := configutil.DecodeSettings(cfg.Transports.Settings, &settings); err != nil {
			return nil, err
		}
		if err := configutil.RequireString(settings.AccountSID, "transports.settings.account_sid"); err != nil {
			return nil, err
		}
		if err := configutil.RequireString(settings.AuthToken, "transports.settings.auth_token"); err != nil {
			return nil, err
		}
		return twiliotransport.New(twiliotransport.Config{
			AccountSID:         settings.AccountSID,
			AuthToken:          settings.AuthToken,
			PublicURL:          settings.PublicURL,
			ServerAddr:         settings.ServerAddr,
			VoicePath:          settings.VoicePath,
			WebsocketPath:      settings.WebsocketPath,
			StatusCallbackPath: settings.StatusCallbackPath,
			AllowAnyOrigin:     settings.AllowAnyOrigin,
			AllowedOrigins:     settings.AllowedOrigins,
		}), nil
	case "mock":
		return mocktransport.New(), nil
	default:
		return nil, fmt.Errorf("unsupported transport provider: %s", cfg.Transports.Provider)
	}
}
