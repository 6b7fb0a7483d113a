// Package common contains shared functionality for command handlers
package common

import (
	"context"
	"errors"
	"fmt"
	"os"

	"fjacquet/budgea-salary/internal/console"
	"fjacquet/budgea-salary/internal/container"
	"fjacquet/budgea-salary/internal/logging"
	"fjacquet/budgea-salary/internal/models"

	"github.com/google/uuid"
)

// ErrNoAccount is returned when the user has no account able to emit transfers.
var ErrNoAccount = errors.New("no account able to emit transfers")

// Login authenticates the operator and returns a session carrying a fresh
// run id. The username comes from the configuration or is asked for; the
// password is always prompted.
func Login(ctx context.Context, c *container.Container) (models.Session, error) {
	cons := c.GetConsole()

	username := c.GetConfig().API.Username
	if username == "" {
		var err error
		if username, err = cons.Ask("Username"); err != nil {
			return models.Session{}, fmt.Errorf("failed to read username: %w", err)
		}
	}

	password, err := cons.Password(username)
	if err != nil {
		return models.Session{}, err
	}

	token, err := c.GetClient().Authenticate(ctx, username, password)
	if err != nil {
		return models.Session{}, err
	}

	sess := models.Session{Token: token, RunID: uuid.NewString()}
	c.GetLogger().Info("Authenticated",
		logging.F(logging.FieldRunID, sess.RunID))
	return sess, nil
}

// SelectAccount binds the session to an account: the one named by accountID
// when set, otherwise the one the operator picks from the list.
func SelectAccount(ctx context.Context, c *container.Container, sess models.Session, accountID string) (models.Session, error) {
	accounts, err := c.GetClient().ListAccounts(ctx, sess)
	if err != nil {
		return sess, err
	}
	if len(accounts) == 0 {
		return sess, ErrNoAccount
	}

	var account models.Account
	if accountID != "" {
		account, err = console.SelectAccount(accounts, accountID)
	} else {
		account, err = c.GetConsole().ChooseAccount(accounts)
	}
	if err != nil {
		return sess, err
	}

	c.GetLogger().Info("Account selected",
		logging.F(logging.FieldAccountID, account.ID),
		logging.F(logging.FieldRunID, sess.RunID))
	return sess.WithAccount(account.ID), nil
}

// Fail prints err the way every command reports a fatal error.
func Fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
}
