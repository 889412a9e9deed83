/*
 * Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package config

const (
	// server
	serverPrefix        = "server."
	serverPort          = serverPrefix + "port"
	serverPublicBaseURL = serverPrefix + "public_base_url"

	// db
	dbPrefix            = "db."
	dbHost              = dbPrefix + "host"
	dbPort              = dbPrefix + "port"
	dbName              = dbPrefix + "dbname"
	dbUser              = dbPrefix + "user"
	dbPassword          = dbPrefix + "password"
	dbSslMode           = dbPrefix + "ssl_mode"
	dbMaxOpenConns      = dbPrefix + "max_open_conns"
	dbMaxIdleConns      = dbPrefix + "max_idle_conns"
	dbMaxLifetime       = dbPrefix + "max_life_time_second"
	dbMaxIdleTimeSecond = dbPrefix + "max_idle_time_second"

	// auth
	authPrefix             = "auth."
	authJwtSecret          = authPrefix + "jwt_secret"
	authAccessTokenTTL     = authPrefix + "access_token_ttl_second"
	authRefreshTokenTTL    = authPrefix + "refresh_token_ttl_second"
	authBcryptCost         = authPrefix + "bcrypt_cost"
	authVerificationTTL    = authPrefix + "verification_ttl_second"
	authPasswordResetTTL   = authPrefix + "password_reset_ttl_second"
	authRequireVerifyEmail = authPrefix + "require_verified_email"

	// oauth
	oauthPrefix             = "oauth."
	oauthGoogleClientID     = oauthPrefix + "google_client_id"
	oauthGoogleClientSecret = oauthPrefix + "google_client_secret"
	oauthGithubClientID     = oauthPrefix + "github_client_id"
	oauthGithubClientSecret = oauthPrefix + "github_client_secret"
	oauthRedirectBaseURL    = oauthPrefix + "redirect_base_url"

	// ai
	aiPrefix             = "ai."
	aiClaudeAPIKey       = aiPrefix + "claude_api_key"
	aiClaudeModel        = aiPrefix + "claude_model"
	aiRequestTimeout     = aiPrefix + "request_timeout_second"
	aiEmbeddingEndpoint  = aiPrefix + "embedding_endpoint"
	aiEmbeddingAPIKey    = aiPrefix + "embedding_api_key"
	aiEmbeddingModel     = aiPrefix + "embedding_model"
	aiEmbeddingDimension = aiPrefix + "embedding_dimension"

	// vector
	vectorPrefix   = "vector."
	vectorEndpoint = vectorPrefix + "endpoint"
	vectorAPIKey   = vectorPrefix + "api_key"
	vectorIndex    = vectorPrefix + "index"

	// queue
	queuePrefix           = "queue."
	queueWorkerCount      = queuePrefix + "worker_count"
	queuePollInterval     = queuePrefix + "poll_interval_second"
	queueTaskTimeout      = queuePrefix + "task_timeout_second"
	queueMaxRetries       = queuePrefix + "max_retries"
	queueRetentionDay     = queuePrefix + "retention_day"
	queueCleanupInterval  = queuePrefix + "cleanup_interval_second"
	queueTimeoutSweep     = queuePrefix + "timeout_sweep_second"
	queueDuplicateCutoff  = queuePrefix + "duplicate_score_cutoff"
	queueDuplicateTopK    = queuePrefix + "duplicate_top_k"
	queueNormalizedLength = queuePrefix + "normalized_text_length"

	// smtp
	smtpPrefix   = "smtp."
	smtpEnable   = smtpPrefix + "enable"
	smtpHost     = smtpPrefix + "host"
	smtpPort     = smtpPrefix + "port"
	smtpUsername = smtpPrefix + "username"
	smtpPassword = smtpPrefix + "password"
	smtpFrom     = smtpPrefix + "from"
	smtpUseTLS   = smtpPrefix + "use_tls"

	// team
	teamPrefix                = "team."
	teamInviteExistingDirect  = teamPrefix + "invite_existing_directly"
	teamInvitationExpireHours = teamPrefix + "invitation_expire_hours"

	// widget
	widgetPrefix       = "widget."
	widgetCacheTTL     = widgetPrefix + "cache_ttl_second"
	widgetAssetMaxAge  = widgetPrefix + "asset_max_age_second"
	widgetDefaultLimit = widgetPrefix + "default_limit"
)
