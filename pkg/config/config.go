/*
 * Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package config

import (
	"strings"

	"github.com/spf13/viper"
)

// SetValue sets a configuration value for the specified key.
func SetValue(key, value string) {
	viper.Set(key, value)
}

// LoadConfig loads configuration from the specified file path and binds the
// environment overrides. Environment variables always win over file values.
func LoadConfig(path string) error {
	viper.SetConfigFile(path)
	viper.SetConfigType("yaml")
	bindEnvOverrides()
	return viper.ReadInConfig()
}

func bindEnvOverrides() {
	_ = viper.BindEnv(aiClaudeAPIKey, "CLAUDE_API_KEY")
	_ = viper.BindEnv(authJwtSecret, "ADMIN_API_TOKEN")
	_ = viper.BindEnv(oauthGoogleClientID, "OAUTH_GOOGLE_CLIENT_ID")
	_ = viper.BindEnv(oauthGoogleClientSecret, "OAUTH_GOOGLE_CLIENT_SECRET")
	_ = viper.BindEnv(oauthGithubClientID, "OAUTH_GITHUB_CLIENT_ID")
	_ = viper.BindEnv(oauthGithubClientSecret, "OAUTH_GITHUB_CLIENT_SECRET")
	_ = viper.BindEnv(dbHost, "DB_HOST")
	_ = viper.BindEnv(dbPassword, "DB_PASSWORD")
	_ = viper.BindEnv(vectorAPIKey, "VECTOR_API_KEY")
	_ = viper.BindEnv(aiEmbeddingAPIKey, "EMBEDDING_API_KEY")
	_ = viper.BindEnv(smtpPassword, "SMTP_PASSWORD")
}

func getString(key, defaultValue string) string {
	if !viper.IsSet(key) {
		return defaultValue
	}
	return viper.GetString(key)
}

func getBool(key string, defaultValue bool) bool {
	if !viper.IsSet(key) {
		return defaultValue
	}
	return viper.GetBool(key)
}

func getInt(key string, defaultValue int) int {
	if !viper.IsSet(key) {
		return defaultValue
	}
	return viper.GetInt(key)
}

func getFloat(key string, defaultValue float64) float64 {
	if !viper.IsSet(key) {
		return defaultValue
	}
	return viper.GetFloat64(key)
}

// GetServerPort returns the API server port.
func GetServerPort() int {
	return getInt(serverPort, 8080)
}

// GetPublicBaseURL returns the externally visible base URL, used in emails
// and OAuth redirects.
func GetPublicBaseURL() string {
	return strings.TrimRight(getString(serverPublicBaseURL, "http://localhost:8080"), "/")
}

// GetDBHost returns the database host address.
func GetDBHost() string {
	return getString(dbHost, "localhost")
}

// GetDBPort returns the database port number.
func GetDBPort() int {
	return getInt(dbPort, 5432)
}

// GetDBName returns the database name.
func GetDBName() string {
	return getString(dbName, "clearvoice")
}

// GetDBUser returns the database username.
func GetDBUser() string {
	return getString(dbUser, "clearvoice")
}

// GetDBPassword returns the database password.
func GetDBPassword() string {
	return getString(dbPassword, "")
}

// GetDBSslMode returns the database SSL mode.
func GetDBSslMode() string {
	return getString(dbSslMode, "disable")
}

// GetDBMaxOpenConns returns the maximum number of open database connections.
func GetDBMaxOpenConns() int {
	return getInt(dbMaxOpenConns, 100)
}

// GetDBMaxIdleConns returns the maximum number of idle database connections.
func GetDBMaxIdleConns() int {
	return getInt(dbMaxIdleConns, 10)
}

// GetDBMaxLifetimeSecond returns the maximum lifetime of database connections in seconds.
func GetDBMaxLifetimeSecond() int {
	return getInt(dbMaxLifetime, 600)
}

// GetDBMaxIdleTimeSecond returns the maximum idle time of database connections in seconds.
func GetDBMaxIdleTimeSecond() int {
	return getInt(dbMaxIdleTimeSecond, 60)
}

// GetJwtSecret returns the HMAC secret for access tokens.
func GetJwtSecret() string {
	return getString(authJwtSecret, "")
}

// GetAccessTokenTTLSecond returns the access token lifetime in seconds.
func GetAccessTokenTTLSecond() int {
	return getInt(authAccessTokenTTL, 900)
}

// GetRefreshTokenTTLSecond returns the refresh token lifetime in seconds.
func GetRefreshTokenTTLSecond() int {
	return getInt(authRefreshTokenTTL, 30*24*3600)
}

// GetBcryptCost returns the bcrypt cost factor, never below 10.
func GetBcryptCost() int {
	cost := getInt(authBcryptCost, 10)
	if cost < 10 {
		cost = 10
	}
	return cost
}

// GetVerificationTTLSecond returns the email verification token lifetime.
func GetVerificationTTLSecond() int {
	return getInt(authVerificationTTL, 24*3600)
}

// GetPasswordResetTTLSecond returns the password reset token lifetime.
func GetPasswordResetTTLSecond() int {
	return getInt(authPasswordResetTTL, 3600)
}

// IsVerifiedEmailRequired returns whether password login requires a
// verified email address.
func IsVerifiedEmailRequired() bool {
	return getBool(authRequireVerifyEmail, false)
}

func GetGoogleClientID() string {
	return getString(oauthGoogleClientID, "")
}

func GetGoogleClientSecret() string {
	return getString(oauthGoogleClientSecret, "")
}

func GetGithubClientID() string {
	return getString(oauthGithubClientID, "")
}

func GetGithubClientSecret() string {
	return getString(oauthGithubClientSecret, "")
}

// GetOAuthRedirectBaseURL returns the base URL OAuth callbacks are built on.
func GetOAuthRedirectBaseURL() string {
	if base := getString(oauthRedirectBaseURL, ""); base != "" {
		return strings.TrimRight(base, "/")
	}
	return GetPublicBaseURL()
}

// GetClaudeAPIKey returns the Anthropic API key for classification.
func GetClaudeAPIKey() string {
	return getString(aiClaudeAPIKey, "")
}

// GetClaudeModel returns the model used for feedback classification.
func GetClaudeModel() string {
	return getString(aiClaudeModel, "claude-3-5-haiku-latest")
}

// GetAIRequestTimeoutSecond returns the per-call provider timeout.
func GetAIRequestTimeoutSecond() int {
	return getInt(aiRequestTimeout, 30)
}

// GetEmbeddingEndpoint returns the OpenAI-compatible embeddings base URL.
func GetEmbeddingEndpoint() string {
	return getString(aiEmbeddingEndpoint, "")
}

func GetEmbeddingAPIKey() string {
	return getString(aiEmbeddingAPIKey, "")
}

func GetEmbeddingModel() string {
	return getString(aiEmbeddingModel, "text-embedding-3-small")
}

// GetEmbeddingDimension returns the expected embedding vector width.
func GetEmbeddingDimension() int {
	return getInt(aiEmbeddingDimension, 768)
}

// GetVectorEndpoint returns the vector index base URL.
func GetVectorEndpoint() string {
	return getString(vectorEndpoint, "")
}

func GetVectorAPIKey() string {
	return getString(vectorAPIKey, "")
}

// GetVectorIndex returns the vector index name.
func GetVectorIndex() string {
	return getString(vectorIndex, "feedback")
}

// GetQueueWorkerCount returns the number of concurrent pipeline workers.
func GetQueueWorkerCount() int {
	return getInt(queueWorkerCount, 4)
}

// GetQueuePollIntervalSecond returns the claim poll interval in seconds.
func GetQueuePollIntervalSecond() int {
	return getInt(queuePollInterval, 2)
}

// GetQueueTaskTimeoutSecond returns how long a claimed task may run before
// the sweep requeues it.
func GetQueueTaskTimeoutSecond() int {
	return getInt(queueTaskTimeout, 300)
}

// GetQueueMaxRetries returns the retry budget per task.
func GetQueueMaxRetries() int {
	return getInt(queueMaxRetries, 3)
}

// GetQueueRetentionDay returns how long terminal tasks are kept.
func GetQueueRetentionDay() int {
	return getInt(queueRetentionDay, 7)
}

// GetQueueCleanupIntervalSecond returns the cleanup loop period.
func GetQueueCleanupIntervalSecond() int {
	return getInt(queueCleanupInterval, 3600)
}

// GetQueueTimeoutSweepSecond returns the timeout sweep period.
func GetQueueTimeoutSweepSecond() int {
	return getInt(queueTimeoutSweep, 30)
}

// GetDuplicateScoreCutoff returns the similarity threshold for duplicate
// suggestions.
func GetDuplicateScoreCutoff() float64 {
	return getFloat(queueDuplicateCutoff, 0.85)
}

// GetDuplicateTopK returns how many neighbors a duplicate scan considers.
func GetDuplicateTopK() int {
	return getInt(queueDuplicateTopK, 5)
}

// GetNormalizedTextLength returns the max length of pipeline input text.
func GetNormalizedTextLength() int {
	return getInt(queueNormalizedLength, 2000)
}

// IsSMTPEnable returns whether outbound email is enabled.
func IsSMTPEnable() bool {
	return getBool(smtpEnable, false)
}

func GetSMTPHost() string {
	return getString(smtpHost, "")
}

func GetSMTPPort() int {
	return getInt(smtpPort, 587)
}

func GetSMTPUsername() string {
	return getString(smtpUsername, "")
}

func GetSMTPPassword() string {
	return getString(smtpPassword, "")
}

func GetSMTPFrom() string {
	return getString(smtpFrom, "no-reply@clearvoice.local")
}

func IsSMTPUseTLS() bool {
	return getBool(smtpUseTLS, true)
}

// IsInviteExistingDirectly returns whether inviting a registered user adds
// them to the team immediately instead of creating a pending invitation.
func IsInviteExistingDirectly() bool {
	return getBool(teamInviteExistingDirect, true)
}

// GetInvitationExpireHours returns the invitation validity window.
func GetInvitationExpireHours() int {
	return getInt(teamInvitationExpireHours, 7*24)
}

// GetWidgetCacheTTLSecond returns the workspace/board lookaside cache TTL.
func GetWidgetCacheTTLSecond() int {
	return getInt(widgetCacheTTL, 60)
}

// GetWidgetAssetMaxAgeSecond returns the cache-control max-age for widget.js.
func GetWidgetAssetMaxAgeSecond() int {
	return getInt(widgetAssetMaxAge, 300)
}

// GetWidgetDefaultLimit returns the default page size of the public list.
func GetWidgetDefaultLimit() int {
	return getInt(widgetDefaultLimit, 50)
}
