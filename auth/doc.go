// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides identity and token utilities.

# Session Tokens

Sessions are resolved upstream. The server only verifies HS256 JWTs whose
subject is the user id:

	token, err := auth.IssueSessionToken(secret, userID, 24*time.Hour)
	userID, err := auth.ParseSessionToken(secret, token)

Tokens must carry an expiry. Any other signing method is rejected.

# Admin Identity

There is one fixed admin user, configured with ADMIN_USER_ID:

	if !auth.IsAdmin(userID, cfg.AdminUserID) { ... }
*/
package auth
