package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/adminauth/internal/client/client"
	"github.com/dmitrijs2005/adminauth/internal/client/services"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Register(ctx context.Context) error
	Forgot(ctx context.Context) error
	Verify(ctx context.Context) error
	Resend(ctx context.Context) error
	Wait(ctx context.Context) error
	Reset(ctx context.Context) error
	ChangePassword(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Status(ctx context.Context) error
}

// protected lists commands that need a signed-in session.
var protected = map[string]bool{
	"logout": true,
	"passwd": true,
	"whoami": true,
}

// runREPL starts a simple read–eval–print loop for the admin console.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on 'a'. Unknown commands are reported back to the
// user. The loop exits on EOF, when ctx is done, or when the user types
// "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	Not logged in:
//	  - help           - show available commands
//	  - login          - authenticate
//	  - register       - create an admin account
//	  - forgot         - email a one-time code for a password reset
//	  - verify         - check the emailed code
//	  - resend         - request another code once the countdown ends
//	  - wait           - follow the resend countdown until it ends
//	  - reset          - set a new password after 'verify'
//	  - status         - session, attempts, lock and reset countdown
//	  - exit | quit    - leave the program
//
//	Logged in:
//	  - help           - show available commands
//	  - whoami         - show the signed-in profile
//	  - passwd         - change password
//	  - status         - session, attempts and lock
//	  - logout         - log out
//	  - exit | quit    - leave the program
//
// Protected commands issued without a session print "login required".
// Handler errors are printed and the loop continues.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("admin %s> ", statusFn()))

		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		if protected[cmd] && !a.isLoggedIn() {
			printlnFn(services.ErrNotAuthenticated.Error())
			continue
		}

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: whoami, passwd, status, logout, exit")
			} else {
				printlnFn("Available commands: login, register, forgot, verify, resend, wait, reset, status, exit")
			}

		case "login":
			report(a.Login(ctx))

		case "logout":
			report(a.Logout(ctx))

		case "register":
			report(a.Register(ctx))

		case "forgot":
			report(a.Forgot(ctx))

		case "verify":
			report(a.Verify(ctx))

		case "resend":
			report(a.Resend(ctx))

		case "wait":
			report(a.Wait(ctx))

		case "reset":
			report(a.Reset(ctx))

		case "passwd":
			report(a.ChangePassword(ctx))

		case "whoami":
			report(a.WhoAmI(ctx))

		case "status":
			report(a.Status(ctx))

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}

// report prints the user-facing text of err, if any.
func report(err error) {
	if err == nil {
		return
	}
	printlnFn(client.MessageOf(err))
}
