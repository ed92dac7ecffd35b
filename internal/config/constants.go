// internal/config/constants.go
package config

// アプリケーション情報
const (
	AppName    = "SRSReviewEngine"
	AppVersion = "1.0.0"
)

// デフォルト設定値
const (
	DefaultServerPort              = ":8080"
	DefaultLogLevel                = "info"
	DefaultLogFormat               = "json"
	DefaultReviewLimit             = 50
	DefaultSessionOverrunTolerance = 1.5
	DefaultAnalyzerWindowDays      = 14
	DefaultMostActiveHoursCount    = 3
	DefaultAnalyzeIntervalMinutes  = 60
	DefaultOptimizeIntervalHours   = 24
)
