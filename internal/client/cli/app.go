package cli

import (
	"bufio"
	"context"
	"io"
	"sync"
	"time"

	"github.com/dmitrijs2005/adminauth/internal/client/models"
	"github.com/dmitrijs2005/adminauth/internal/client/services"
	"github.com/dmitrijs2005/adminauth/internal/logging"
)

// sessionExpiredNotice is shown when the session is dropped without a
// user-initiated logout, e.g. after a 401 from the gateway.
const sessionExpiredNotice = "Session expired. Please log in again."

// App is the interactive admin console. It owns the prompt and the state of
// an in-progress password reset; everything else lives in the AuthService.
type App struct {
	authService services.AuthService
	otpFlow     *services.OTPFlow
	reader      *bufio.Reader
	out         io.Writer
	log         logging.Logger
	tick        time.Duration

	mu        sync.Mutex
	ticket    services.ResetTicket
	lastState models.SessionState
	leaving   bool
}

// NewApp builds an App reading commands from in and writing prompts to out.
func NewApp(as services.AuthService, flow *services.OTPFlow, in io.Reader, out io.Writer, log logging.Logger) *App {
	if log == nil {
		log = logging.NopLogger{}
	}
	return &App{
		authService: as,
		otpFlow:     flow,
		reader:      bufio.NewReader(in),
		out:         out,
		log:         log.With("component", "cli"),
		tick:        time.Second,
	}
}

// Run restores the stored session and blocks in the REPL until the user
// exits or ctx is done.
func (a *App) Run(ctx context.Context) error {
	defer a.authService.Close(ctx)

	unsubscribe := a.authService.Subscribe(a.onChange)
	defer unsubscribe()

	if err := a.authService.Initialize(ctx); err != nil {
		return err
	}
	a.Root(ctx)
	return nil
}

func (a *App) isLoggedIn() bool {
	return a.authService.IsAuthenticated()
}

// onChange prints operation notices and reports a session that ended
// without a notice.
func (a *App) onChange(s services.Snapshot) {
	a.mu.Lock()
	prev := a.lastState
	a.lastState = s.State
	leaving := a.leaving
	a.mu.Unlock()

	switch {
	case s.Notice != "":
		printlnFn(s.Notice)
	case !leaving && prev == models.Authenticated && s.State == models.Unauthenticated:
		printlnFn(sessionExpiredNotice)
	}
}

func (a *App) resetTicket() services.ResetTicket {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.ticket
}

func (a *App) setLeaving(v bool) {
	a.mu.Lock()
	a.leaving = v
	a.mu.Unlock()
}

func (a *App) setResetTicket(t services.ResetTicket) {
	a.mu.Lock()
	a.ticket = t
	a.mu.Unlock()
}
