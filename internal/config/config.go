package config

import (
	"os"

	"github.com/spf13/viper"
)

// Config holds the application configuration
type Config struct {
	Backend BackendConfig
	Media   MediaConfig
	Log     LogConfig
}

// BackendConfig holds the remote inference/speech backend configuration
type BackendConfig struct {
	BaseURL            string `mapstructure:"base_url"`
	APIKey             string `mapstructure:"api_key"`
	ChatModel          string `mapstructure:"chat_model"`
	VisionModel        string `mapstructure:"vision_model"`
	SpeechModel        string `mapstructure:"speech_model"`
	SpeechVoice        string `mapstructure:"speech_voice"`
	TranscriptionModel string `mapstructure:"transcription_model"`
}

// MediaConfig holds the local media reference store configuration
type MediaConfig struct {
	Dir string `mapstructure:"dir"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Load loads the configuration from the config.yaml file.
// CONFIG_PATH overrides the default lookup, which tests rely on.
func Load() (*Config, error) {
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		viper.SetConfigFile(path)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
	}

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	if config.Backend.ChatModel == "" {
		config.Backend.ChatModel = "gpt-4o-mini"
	}
	if config.Backend.VisionModel == "" {
		config.Backend.VisionModel = config.Backend.ChatModel
	}
	if config.Backend.SpeechModel == "" {
		config.Backend.SpeechModel = "tts-1"
	}
	if config.Backend.SpeechVoice == "" {
		config.Backend.SpeechVoice = "alloy"
	}
	if config.Backend.TranscriptionModel == "" {
		config.Backend.TranscriptionModel = "whisper-1"
	}

	return &config, nil
}
