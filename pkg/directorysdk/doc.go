/*
Package directorysdk provides a client SDK for the campus directory service.

# Overview

The package is organized around two main types:

  - Client: unauthenticated operations (health probes, login)
  - Session: authenticated operations carrying an opaque bearer token

Create a Client to reach public endpoints and log in:

	client := directorysdk.NewClient("https://directory.example.com")

	// Check service health
	health, err := client.GetLiveness(ctx)

	// Authenticate to create a session
	session, result, err := client.Login(ctx, "20230001", "secret")
	if result.RequirePasswordChange {
		// The account still uses its identifier-derived default secret.
		err = session.ChangePassword(ctx, "secret", "new-secret", "new-secret")
	}

Use a Session for everything behind authentication:

	me, err := session.Me(ctx)
	perms, err := session.Permissions(ctx)

	// Rotate the token before it expires; the old token is revoked.
	result, err := session.Refresh(ctx)

Administrative operations require a session whose account holds the admin
role:

	summary, err := session.CreateAccount(ctx, directorysdk.CreateAccountInput{
		Identifier: "20240101",
		RealName:   "Chen Jie",
		Role:       "student",
		College:    "Physics",
	})

	stats, err := session.GetStatistics(ctx)

# Error Handling

Service errors are returned as *APIError with the machine-readable code and
HTTP status preserved:

	_, _, err := client.Login(ctx, identifier, secret)
	var apiErr *directorysdk.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case directorysdk.ErrorCodeInvalidCredentials:
			// apiErr.RemainingAttempts counts down to the account freeze.
		case directorysdk.ErrorCodeAccountLocked:
			// Frozen after three consecutive failures.
		}
	}

Failed logins report how many attempts remain before the account is frozen;
an administrator has to unfreeze it afterwards.
*/
package directorysdk
