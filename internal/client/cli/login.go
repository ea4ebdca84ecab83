package cli

import (
	"context"
	"fmt"
)

// Login prompts for credentials and authenticates against the server. On
// success the access token is held by the API client and the login name is
// shown in the prompt.
func (a *App) Login() error {
	login, err := GetSimpleText(a.in, "Enter login:", a.out)
	if err != nil {
		return err
	}

	password, err := GetPassword(a.out)
	if err != nil {
		return err
	}
	defer func() {
		for i := range password {
			password[i] = 0
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), a.config.RequestTimeout)
	defer cancel()

	if err := a.api.Login(ctx, login, string(password)); err != nil {
		return err
	}

	a.login = login
	fmt.Fprintln(a.out, "Logged in.")
	return nil
}
