package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
)

func (a *App) Main(ctx context.Context) {
	fmt.Fprintln(a.out, "DocVault CLI (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Fprintf(a.out, "docvault %s > ", a.showLogin())
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		cmd := parts[0]
		args := parts[1:]

		if err := a.Dispatch(ctx, cmd, args); err != nil {
			if err == errExit {
				fmt.Fprintln(a.out, "Bye!")
				return
			}
			fmt.Fprintf(a.out, "error: %v\n", err)
		}

		if ctx.Err() != nil {
			return
		}
	}
}

var errExit = fmt.Errorf("exit")

// Dispatch routes one REPL command.
func (a *App) Dispatch(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "help":
		if a.isLoggedIn() {
			fmt.Fprintln(a.out, "Available commands: upload <path> [folderId], list [folderId], logout, exit")
		} else {
			fmt.Fprintln(a.out, "Available commands: login, exit")
		}
		return nil
	case "login":
		return a.Login()
	case "logout":
		a.login = ""
		a.api.SetToken("")
		return nil
	case "upload":
		return a.Upload(ctx, args)
	case "list":
		return a.List(ctx, args)
	case "exit", "quit":
		return errExit
	default:
		fmt.Fprintln(a.out, "Unknown command. Type 'help'.")
		return nil
	}
}
