package config

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/joho/godotenv"
)

// カレンダードライバーの種類
const (
	DriverAPI     = "api"
	DriverBrowser = "browser"
)

// ssmPrefix Parameter Storeのパラメータ名の接頭辞
const ssmPrefix = "/voice-calendar-scheduler/"

// SSMParameterGetter Parameter Storeからの取得を抽象化したインターフェース
type SSMParameterGetter interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// Config アプリケーション設定構造体
type Config struct {
	// Google Calendar設定
	GoogleCredentials string
	CalendarID        string

	// LINE API設定（未設定ならログ出力で代替）
	LineChannelAccessToken string
	LineUserID             string

	// 交渉ループ設定
	PollInterval time.Duration
	MaxRounds    int

	// HTTPサーバー設定
	ListenAddr     string
	AllowedOrigins []string

	// カレンダードライバー設定
	CalendarDriver     string
	BrowserUserDataDir string
	BrowserHeadless    bool

	// その他設定
	LogLevel string
	Timezone string

	// AWS関連（本番環境でのみ使用）
	ssmClient SSMParameterGetter
}

// Load 環境に応じて設定を読み込み
func Load(ctx context.Context) (*Config, error) {
	if IsLambda() {
		return loadAWSConfig(ctx)
	}
	return loadLocalConfig()
}

// IsLambda AWS Lambda環境かどうか
func IsLambda() bool {
	return os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != ""
}

// loadLocalConfig ローカル開発環境用の設定読み込み
func loadLocalConfig() (*Config, error) {
	// .envファイルが存在しない場合はエラーにしない
	if err := godotenv.Load(); err != nil {
		slog.Debug(".envファイルが見つかりません", "error", err)
	}

	cfg, err := loadFromEnv()
	if err != nil {
		return nil, err
	}
	cfg.GoogleCredentials = getEnvOrDefault("GOOGLE_CREDENTIALS", "")
	cfg.LineChannelAccessToken = getEnvOrDefault("LINE_CHANNEL_ACCESS_TOKEN", "")
	cfg.LineUserID = getEnvOrDefault("LINE_USER_ID", "")

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadAWSConfig AWS Lambda環境用の設定読み込み
func loadAWSConfig(ctx context.Context) (*Config, error) {
	awsConfig, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("AWS設定の読み込みに失敗しました: %v", err)
	}

	cfg, err := loadFromEnv()
	if err != nil {
		return nil, err
	}
	cfg.ssmClient = ssm.NewFromConfig(awsConfig)

	// Parameter Storeから機密情報を取得
	if err := cfg.loadFromParameterStore(ctx); err != nil {
		return nil, fmt.Errorf("Parameter Storeからの設定読み込みに失敗しました: %v", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFromEnv 機密でない設定を環境変数から読み込み
func loadFromEnv() (*Config, error) {
	cfg := &Config{
		CalendarID:         getEnvOrDefault("CALENDAR_ID", "primary"),
		ListenAddr:         getEnvOrDefault("LISTEN_ADDR", ":8000"),
		AllowedOrigins:     splitList(getEnvOrDefault("ALLOWED_ORIGINS", "http://localhost:8080,http://127.0.0.1:8080")),
		CalendarDriver:     strings.ToLower(getEnvOrDefault("CALENDAR_DRIVER", DriverAPI)),
		BrowserUserDataDir: getEnvOrDefault("BROWSER_USER_DATA_DIR", "chrome_data"),
		LogLevel:           getEnvOrDefault("LOG_LEVEL", "INFO"),
		Timezone:           getEnvOrDefault("TIMEZONE", "Asia/Shanghai"),
	}

	pollInterval, err := time.ParseDuration(getEnvOrDefault("POLL_INTERVAL", "500ms"))
	if err != nil {
		return nil, fmt.Errorf("POLL_INTERVALの形式が不正です: %v", err)
	}
	cfg.PollInterval = pollInterval

	maxRounds, err := strconv.Atoi(getEnvOrDefault("MAX_ROUNDS", "10"))
	if err != nil {
		return nil, fmt.Errorf("MAX_ROUNDSの形式が不正です: %v", err)
	}
	cfg.MaxRounds = maxRounds

	headless, err := strconv.ParseBool(getEnvOrDefault("BROWSER_HEADLESS", "false"))
	if err != nil {
		return nil, fmt.Errorf("BROWSER_HEADLESSの形式が不正です: %v", err)
	}
	cfg.BrowserHeadless = headless

	return cfg, nil
}

// validate 設定値の組み合わせを確認
func (c *Config) validate() error {
	if c.PollInterval <= 0 {
		return fmt.Errorf("POLL_INTERVALは正の値を指定してください")
	}
	if c.MaxRounds < 0 {
		return fmt.Errorf("MAX_ROUNDSは0以上を指定してください")
	}
	if _, err := c.Location(); err != nil {
		return err
	}

	switch c.CalendarDriver {
	case DriverAPI:
		if c.GoogleCredentials == "" {
			return fmt.Errorf("GOOGLE_CREDENTIALS環境変数が設定されていません")
		}
		if _, err := c.GetGoogleCredentialsJSON(); err != nil {
			return err
		}
	case DriverBrowser:
	default:
		return fmt.Errorf("CALENDAR_DRIVERは %s か %s を指定してください: %s", DriverAPI, DriverBrowser, c.CalendarDriver)
	}

	if (c.LineChannelAccessToken == "") != (c.LineUserID == "") {
		return fmt.Errorf("LINE_CHANNEL_ACCESS_TOKENとLINE_USER_IDは両方設定してください")
	}
	return nil
}

// loadFromParameterStore Parameter Storeから機密情報を読み込み
func (c *Config) loadFromParameterStore(ctx context.Context) error {
	googleCreds, err := c.getParameter(ctx, getEnvOrDefault("SSM_GOOGLE_CREDS_PARAM", ssmPrefix+"google-creds"), true)
	if err != nil {
		return fmt.Errorf("Google認証情報の取得に失敗しました: %v", err)
	}
	c.GoogleCredentials = googleCreds

	lineToken, err := c.getParameter(ctx, getEnvOrDefault("SSM_LINE_TOKEN_PARAM", ssmPrefix+"line-channel-access-token"), true)
	if err != nil {
		return fmt.Errorf("LINE Channel Access Tokenの取得に失敗しました: %v", err)
	}
	c.LineChannelAccessToken = lineToken

	lineUser, err := c.getParameter(ctx, getEnvOrDefault("SSM_LINE_USER_ID_PARAM", ssmPrefix+"line-user-id"), true)
	if err != nil {
		return fmt.Errorf("LINE User IDの取得に失敗しました: %v", err)
	}
	c.LineUserID = lineUser

	calendarID, err := c.getParameter(ctx, getEnvOrDefault("SSM_CALENDAR_ID_PARAM", ssmPrefix+"calendar-id"), false)
	if err != nil {
		return fmt.Errorf("カレンダーIDの取得に失敗しました: %v", err)
	}
	c.CalendarID = calendarID

	return nil
}

// getParameter Parameter Storeから指定されたパラメータを取得
func (c *Config) getParameter(ctx context.Context, paramName string, withDecryption bool) (string, error) {
	input := &ssm.GetParameterInput{
		Name:           aws.String(paramName),
		WithDecryption: aws.Bool(withDecryption),
	}

	result, err := c.ssmClient.GetParameter(ctx, input)
	if err != nil {
		return "", fmt.Errorf("パラメータ %s の取得に失敗しました: %v", paramName, err)
	}

	if result.Parameter == nil || result.Parameter.Value == nil || *result.Parameter.Value == "" {
		return "", fmt.Errorf("パラメータ %s は空の値です", paramName)
	}

	return *result.Parameter.Value, nil
}

// GetGoogleCredentialsJSON Google認証情報をJSONとして解析
func (c *Config) GetGoogleCredentialsJSON() (map[string]interface{}, error) {
	var credentials map[string]interface{}
	if err := json.Unmarshal([]byte(c.GoogleCredentials), &credentials); err != nil {
		return nil, fmt.Errorf("Google認証情報のJSON解析に失敗しました: %v", err)
	}
	return credentials, nil
}

// Location 設定されたタイムゾーン
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("タイムゾーン %s の読み込みに失敗しました: %v", c.Timezone, err)
	}
	return loc, nil
}

// LineEnabled LINE通知が設定されているか
func (c *Config) LineEnabled() bool {
	return c.LineChannelAccessToken != "" && c.LineUserID != ""
}

// getEnvOrDefault 環境変数を取得し、存在しない場合はデフォルト値を返す
func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

// splitList カンマ区切りの値を分割（空要素は除く）
func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
