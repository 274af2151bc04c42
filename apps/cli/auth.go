package main

import (
	"context"
	"fmt"
)

func (cli *commandLine) login(ctx context.Context, args []string) error {
	fs := cli.newFlagSet("login")
	email := fs.String("email", "", "Your account email. The password will be prompted next.")
	if err := parse(fs, args, email); err != nil {
		return err
	}
	pwd, err := cli.readPassword()
	if err != nil {
		return err
	}
	if pwd == "" {
		fs.Usage()
		return errHelp
	}

	usr, err := cli.app.Auth().Login(ctx, *email, pwd)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Signed in as %s (%s)\n", usr.Email, usr.UserID())
	return nil
}

func (cli *commandLine) signup(ctx context.Context, args []string) error {
	fs := cli.newFlagSet("signup")
	email := fs.String("email", "", "The account email. The password will be prompted next.")
	name := fs.String("name", "", "Display name (defaults to the part of the email before @).")
	if err := parse(fs, args, email); err != nil {
		return err
	}
	pwd, err := cli.readPassword()
	if err != nil {
		return err
	}
	if pwd == "" {
		fs.Usage()
		return errHelp
	}

	if err := cli.app.Auth().Signup(ctx, *email, pwd, *name); err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Account created for %s, check your inbox for the verification code\n", *email)
	return nil
}

func (cli *commandLine) verifyEmail(ctx context.Context, args []string) error {
	fs := cli.newFlagSet("verify-email")
	email := fs.String("email", "", "The account email.")
	code := fs.String("code", "", "The verification code received by email.")
	if err := parse(fs, args, email, code); err != nil {
		return err
	}
	if err := cli.app.Auth().VerifyEmail(ctx, *email, *code); err != nil {
		return err
	}
	fmt.Fprintln(cli.out, "Email verified")
	return nil
}

func (cli *commandLine) logout(ctx context.Context, args []string) error {
	if err := parse(cli.newFlagSet("logout"), args); err != nil {
		return err
	}
	if err := cli.app.Auth().Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(cli.out, "Signed out")
	return nil
}

func (cli *commandLine) whoami(ctx context.Context, args []string) error {
	fs := cli.newFlagSet("whoami")
	verify := fs.Bool("verify", false, "Also check the session with the server.")
	if err := parse(fs, args); err != nil {
		return err
	}
	usr, err := cli.currentUser(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "%s <%s> id=%s\n", usr.Name, usr.Email, usr.UserID())
	if *verify {
		if cli.app.Auth().VerifySession(ctx) {
			fmt.Fprintln(cli.out, "session: valid")
		} else {
			fmt.Fprintln(cli.out, "session: expired")
		}
	}
	return nil
}
