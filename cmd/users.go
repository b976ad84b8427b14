package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/desertthunder/ytlinks/internal/client"
	"github.com/desertthunder/ytlinks/internal/shared"
	"github.com/urfave/cli/v3"
)

func emailArg(cmd *cli.Command) (string, error) {
	email := shared.NormalizeEmail(cmd.StringArg("email"))
	if email == "" {
		return "", fmt.Errorf("%w: email", shared.ErrMissingArgument)
	}
	return email, nil
}

func (r *Runner) signIn(res *client.AuthResult) error {
	s := res.Session()
	if err := r.saveSession(s); err != nil {
		return err
	}
	r.api.SetToken(s.Token)
	return r.writePlain("✓ %s as %s (user #%d)\n", res.Message, s.Email, s.UserID)
}

// UsersRegister creates an account and stores its session.
func (r *Runner) UsersRegister(ctx context.Context, cmd *cli.Command) error {
	email, err := emailArg(cmd)
	if err != nil {
		return err
	}

	res, err := r.api.Register(ctx, email)
	if err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return fmt.Errorf("%w: try `ytlinks users login %s`", err, email)
		}
		return err
	}
	return r.signIn(res)
}

// UsersLogin signs in with an existing email and stores the session.
func (r *Runner) UsersLogin(ctx context.Context, cmd *cli.Command) error {
	email, err := emailArg(cmd)
	if err != nil {
		return err
	}

	res, err := r.api.Login(ctx, email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return fmt.Errorf("%w: register first with `ytlinks users register %s`", err, email)
		}
		return err
	}
	return r.signIn(res)
}

// UsersLogout revokes the token server side and removes the local session.
//
// The local session is removed even when the server cannot be reached.
func (r *Runner) UsersLogout(ctx context.Context, cmd *cli.Command) error {
	s, err := r.session()
	if err != nil {
		return err
	}

	if err := r.api.Logout(ctx); err != nil {
		r.logger.Warn("server logout failed, removing local session anyway", "error", err)
	}

	path, err := r.resolveSessionPath()
	if err != nil {
		return err
	}
	if err := client.ClearSession(path); err != nil {
		return err
	}
	return r.writePlain("✓ Logged out %s\n", s.Email)
}

// UsersDelete deletes the signed in account and every link it owns.
func (r *Runner) UsersDelete(ctx context.Context, cmd *cli.Command) error {
	s, err := r.session()
	if err != nil {
		return err
	}

	if !cmd.Bool("yes") && !r.confirm(fmt.Sprintf("Delete %s and all of its links?", s.Email)) {
		return r.writePlain("Aborted\n")
	}

	if _, err := r.api.DeleteUser(ctx, s.Email); err != nil {
		return err
	}

	path, err := r.resolveSessionPath()
	if err != nil {
		return err
	}
	if err := client.ClearSession(path); err != nil {
		return err
	}
	return r.writePlain("✓ Deleted %s\n", s.Email)
}

// UsersWhoAmI prints the stored session.
func (r *Runner) UsersWhoAmI(ctx context.Context, cmd *cli.Command) error {
	s, err := r.session()
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(map[string]any{"id": s.UserID, "email": s.Email, "api_url": r.api.BaseURL()}, true)
	}
	return r.writePlain("%s (user #%d) on %s\n", s.Email, s.UserID, r.api.BaseURL())
}

// confirm asks a yes/no question on the runner input.
func (r *Runner) confirm(question string) bool {
	r.writePlain("%s [y/N] ", question)
	answer, err := bufio.NewReader(r.input).ReadString('\n')
	if err != nil && answer == "" {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}
