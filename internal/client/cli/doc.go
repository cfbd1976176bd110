// Package cli provides the interactive admin console.
//
// It wires the auth session controller and the OTP reset flow to a small
// REPL. Typical flow: restore the stored session, print the prompt with the
// signed-in user, and execute commands until the user exits.
//
// Key features:
//   - Login / Logout with the failed-attempt lockout
//   - Register a new admin account
//   - Password reset: forgot → verify → reset, with a resend countdown
//   - Change password while signed in
//   - Status: session, attempt counter, lock and countdown
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App and runREPL for details.
package cli
