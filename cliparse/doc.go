// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

Values are resolved in three layers, later layers winning:

 1. a .env file (github.com/joho/godotenv, never overrides the process env)
 2. the process environment (github.com/caarlos0/env/v11 struct tags)
 3. CLI flags that were explicitly set

# CLI Flags

	-env-file    Path to a .env file (default .env, missing is fine)
	-p           Server port
	-d           Database URL
	-t           Database type (sqlite or postgres)
	-jwt-secret  Session token secret
	-admin-user  Admin user ID
	-log-level   Log level
	-log-file    Rotating log file path

# Environment Variables

	PORT, DATABASE_URL, DATABASE_TYPE
	JWT_SECRET, ADMIN_USER_ID
	LOG_LEVEL, LOG_FILE, LOG_MAX_SIZE_MB, LOG_MAX_BACKUPS, LOG_MAX_AGE_DAYS
	PEER_SCALE, PEER_CLAMP

# Validation

ParseFlags returns an error if:

  - DATABASE_URL is missing
  - DATABASE_TYPE is not sqlite or postgres
  - JWT_SECRET or ADMIN_USER_ID is missing
  - PEER_SCALE or PEER_CLAMP is not positive
*/
package cliparse
