// internal/config/config.go
package config

import (
	"log"

	"github.com/spf13/viper"
)

type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type AppConfig struct {
	// dueCards が一度に返す上限
	ReviewLimit int `mapstructure:"review_limit"`
	// 目標時間に対する超過許容率 (経過時間 >= target * tolerance で自動完了)
	SessionOverrunTolerance float64 `mapstructure:"session_overrun_tolerance"`
	// Behavior Analyzer が走査する履歴ウィンドウ (日)
	AnalyzerWindowDays int `mapstructure:"analyzer_window_days"`
	// ActivityPattern.mostActiveHours に採用する時間帯の数
	MostActiveHoursCount int `mapstructure:"most_active_hours_count"`
}

type SchedulerConfig struct {
	// Behavior Analyzer の実行間隔 (分)
	AnalyzeIntervalMinutes int `mapstructure:"analyze_interval_minutes"`
	// 通知頻度最適化の実行間隔 (時間)
	OptimizeIntervalHours int `mapstructure:"optimize_interval_hours"`
}

type DispatcherConfig struct {
	Type string `mapstructure:"type"` // "log" or "ses"
}

type SESConfig struct {
	Region          string `mapstructure:"region"`
	From            string `mapstructure:"from"`
	AuthType        string `mapstructure:"auth_type"` // "iam_role" or "static_credentials"
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
}

type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

type Config struct {
	Database   DatabaseConfig   `mapstructure:"database"`
	Server     ServerConfig     `mapstructure:"server"`
	Log        LogConfig        `mapstructure:"log"`
	App        AppConfig        `mapstructure:"app"`
	Scheduler  SchedulerConfig  `mapstructure:"scheduler"`
	Dispatcher DispatcherConfig `mapstructure:"dispatcher"`
	SES        SESConfig        `mapstructure:"ses"`
	CORS       CORSConfig       `mapstructure:"cors"`
}

var Cfg Config

func LoadConfig(path string) error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(path)
	viper.AddConfigPath(".")

	// 環境変数での上書き (例: APP_DATABASE_URL)
	viper.SetEnvPrefix("APP")
	viper.AutomaticEnv()
	viper.BindEnv("database.url", "DATABASE_URL")
	viper.BindEnv("dispatcher.type", "DISPATCHER_TYPE")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("Warning: Config file not found. Using default settings or environment variables if available.")
		} else {
			log.Printf("Error reading config file: %s\n", err)
			return err
		}
	}

	err := viper.Unmarshal(&Cfg)
	if err != nil {
		log.Printf("Error unmarshalling config: %s\n", err)
		return err
	}

	// --- デフォルト値の設定 ---
	if Cfg.Server.Port == "" {
		log.Println("Server port not set, using default ':8080'")
		Cfg.Server.Port = DefaultServerPort
	}
	if Cfg.App.ReviewLimit <= 0 {
		Cfg.App.ReviewLimit = DefaultReviewLimit
	}
	if Cfg.App.SessionOverrunTolerance <= 0 {
		Cfg.App.SessionOverrunTolerance = DefaultSessionOverrunTolerance
	}
	if Cfg.App.AnalyzerWindowDays <= 0 {
		Cfg.App.AnalyzerWindowDays = DefaultAnalyzerWindowDays
	}
	if Cfg.App.MostActiveHoursCount <= 0 {
		Cfg.App.MostActiveHoursCount = DefaultMostActiveHoursCount
	}
	if Cfg.Scheduler.AnalyzeIntervalMinutes <= 0 {
		Cfg.Scheduler.AnalyzeIntervalMinutes = DefaultAnalyzeIntervalMinutes
	}
	if Cfg.Scheduler.OptimizeIntervalHours <= 0 {
		Cfg.Scheduler.OptimizeIntervalHours = DefaultOptimizeIntervalHours
	}
	if Cfg.Dispatcher.Type == "" {
		Cfg.Dispatcher.Type = "log"
	}
	if Cfg.Database.URL == "" {
		log.Println("Warning: Database URL is not set in config.")
	}

	log.Println("Config loaded successfully")
	log.Printf("Server Port: %s", Cfg.Server.Port)
	log.Printf("Review Limit: %d", Cfg.App.ReviewLimit)
	log.Printf("Dispatcher Type: %s", Cfg.Dispatcher.Type)

	return nil
}
