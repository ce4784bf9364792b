package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
)

func (a *App) getStatus() string {
	user := a.session.Current()
	if user == nil {
		return ""
	}
	return fmt.Sprintf("(%s)", user.Name)
}

func (a *App) Root(ctx context.Context) {

	fmt.Println("Welcome to adboard CLI (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Printf("ab %s> ", a.getStatus())
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

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				fmt.Println("Available commands: search, view <n>, myads, create, toggle <n>, delete <n>, uploadurl, logout, exit")
			} else {
				fmt.Println("Available commands: search, view <n>, login, exit")
			}

		case "login":
			a.Login(ctx)
		case "logout":
			a.Logout(ctx)
		case "search", "s":
			a.Search(ctx)
		case "view", "v":
			a.View(ctx, args)
		case "myads", "m":
			a.MyAds(ctx)
		case "create":
			a.Create(ctx)
		case "toggle":
			a.Toggle(ctx, args)
		case "delete":
			a.Delete(ctx, args)
		case "uploadurl":
			a.UploadURL(ctx)
		case "exit", "quit":
			fmt.Println("Bye!")
			return
		default:
			fmt.Println("Unknown command:", cmd)
		}
	}

}
