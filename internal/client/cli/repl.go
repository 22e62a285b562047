package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/valuationdesk/internal/client/models"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Dashboard(ctx context.Context, args []string) error
	Stats(ctx context.Context) error
	Watch(ctx context.Context, args []string) error
	Export(ctx context.Context, args []string) error
	History(ctx context.Context, args []string) error
	SetStatus(ctx context.Context, status models.Status, args []string) error
	Rework(ctx context.Context, args []string) error
	Copy(ctx context.Context, ids []string) error
}

const (
	helpLoggedOut = "Available commands: login, exit"
	helpLoggedIn  = "Available commands: (d)ashboard [filter|sort|page|values|refresh], stats, watch [n], " +
		"export <id> [pdf|docx] [archive], history [id], approve <id>, reject <id>, rework <id>, copy [id...], logout, exit"
)

// runREPL reads commands from scanner until EOF, "exit" or "quit". Handlers
// report their own errors to the user, so their return values are dropped.
// Everything except help, login and exit requires a session.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("vd %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpLoggedIn)
			} else {
				printlnFn(helpLoggedOut)
			}
			continue
		case "login":
			_ = a.Login(ctx)
			continue
		case "exit", "quit":
			printlnFn("Bye!")
			return
		}

		if !a.isLoggedIn() {
			printlnFn("Please login first")
			continue
		}

		switch cmd {
		case "d", "dashboard":
			_ = a.Dashboard(ctx, args)
		case "stats":
			_ = a.Stats(ctx)
		case "watch":
			_ = a.Watch(ctx, args)
		case "export":
			_ = a.Export(ctx, args)
		case "history":
			_ = a.History(ctx, args)
		case "approve":
			_ = a.SetStatus(ctx, models.StatusApproved, args)
		case "reject":
			_ = a.SetStatus(ctx, models.StatusRejected, args)
		case "rework":
			_ = a.Rework(ctx, args)
		case "copy":
			_ = a.Copy(ctx, args)
		case "logout":
			_ = a.Logout(ctx)
		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
