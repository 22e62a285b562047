package cli

import (
	"bufio"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrijs2005/valuationdesk/internal/client/models"
)

type fakeExec struct {
	loggedIn bool
	calls    []string
}

func (f *fakeExec) record(name string, args ...string) error {
	f.calls = append(f.calls, strings.TrimSpace(name+" "+strings.Join(args, " ")))
	return nil
}

func (f *fakeExec) isLoggedIn() bool { return f.loggedIn }
func (f *fakeExec) Login(ctx context.Context) error {
	f.loggedIn = true
	return f.record("login")
}
func (f *fakeExec) Logout(ctx context.Context) error {
	f.loggedIn = false
	return f.record("logout")
}
func (f *fakeExec) Dashboard(ctx context.Context, args []string) error {
	return f.record("dashboard", args...)
}
func (f *fakeExec) Stats(ctx context.Context) error { return f.record("stats") }
func (f *fakeExec) Watch(ctx context.Context, args []string) error {
	return f.record("watch", args...)
}
func (f *fakeExec) Export(ctx context.Context, args []string) error {
	return f.record("export", args...)
}
func (f *fakeExec) History(ctx context.Context, args []string) error {
	return f.record("history", args...)
}
func (f *fakeExec) SetStatus(ctx context.Context, status models.Status, args []string) error {
	return f.record(string(status), args...)
}
func (f *fakeExec) Rework(ctx context.Context, args []string) error {
	return f.record("rework", args...)
}
func (f *fakeExec) Copy(ctx context.Context, ids []string) error { return f.record("copy", ids...) }

func silence(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		parts := make([]string, len(a))
		for i, v := range a {
			parts[i], _ = v.(string)
		}
		lines = append(lines, strings.Join(parts, " "))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return &lines
}

func TestRunREPL_CommandsAfterLogin(t *testing.T) {
	silence(t)

	input := strings.NewReader(strings.Join([]string{
		"stats",
		"login",
		"d filter city=Pune",
		"dashboard",
		"stats",
		"watch 3",
		"export U1 docx archive",
		"history",
		"approve U1",
		"reject U2",
		"rework U3",
		"copy U1 U2",
		"logout",
		"stats",
		"exit",
		"stats",
	}, "\n"))

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "status" }, bufio.NewScanner(input))

	assert.Equal(t, []string{
		"login",
		"dashboard filter city=Pune",
		"dashboard",
		"stats",
		"watch 3",
		"export U1 docx archive",
		"history",
		"approved U1",
		"rejected U2",
		"rework U3",
		"copy U1 U2",
		"logout",
	}, exec.calls)
}

func TestRunREPL_HelpAndUnknown(t *testing.T) {
	lines := silence(t)

	input := strings.NewReader("help\n\nfoobar\nquit\n")
	exec := &fakeExec{loggedIn: true}
	runREPL(context.Background(), exec, func() string { return "s" }, bufio.NewScanner(input))

	assert.Empty(t, exec.calls)
	assert.Contains(t, *lines, helpLoggedIn)
	assert.Contains(t, *lines, "Unknown command: foobar")
	assert.Contains(t, *lines, "Bye!")
}

func TestRunREPL_RequiresLogin(t *testing.T) {
	lines := silence(t)

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "s" }, bufio.NewScanner(strings.NewReader("help\nexport U1\n")))

	assert.Empty(t, exec.calls)
	assert.Contains(t, *lines, helpLoggedOut)
	assert.Contains(t, *lines, "Please login first")
}
