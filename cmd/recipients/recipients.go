// Package recipients handles the recipient listing command
package recipients

import (
	"context"
	"fmt"

	"fjacquet/budgea-salary/cmd/common"
	"fjacquet/budgea-salary/cmd/root"
	"fjacquet/budgea-salary/internal/container"

	"github.com/spf13/cobra"
)

// Options are the flags of the recipients command.
type Options struct {
	Account string
	All     bool
}

var flags Options

// Cmd represents the recipients command
var Cmd = &cobra.Command{
	Use:   "recipients",
	Short: "List the recipients of an account",
	Long: `List the recipients registered on an account. Only recipients in the
categories allowed for salary transfers are shown unless --all is given.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c := root.GetContainer()
		if c == nil {
			return fmt.Errorf("container not initialized")
		}
		return Run(cmd.Context(), c, flags)
	},
}

func init() {
	Cmd.Flags().StringVar(&flags.Account, "account", "", "id of the account")
	Cmd.Flags().BoolVar(&flags.All, "all", false, "show recipients of every category")
}

// Run lists the recipients of the selected account.
func Run(ctx context.Context, c *container.Container, opts Options) error {
	sess, err := common.Login(ctx, c)
	if err != nil {
		return err
	}
	sess, err = common.SelectAccount(ctx, c, sess, opts.Account)
	if err != nil {
		return err
	}

	var categories []string
	if !opts.All {
		categories = c.GetConfig().Transfer.AllowedCategories
	}
	list, err := c.GetClient().ListRecipients(ctx, sess, categories...)
	if err != nil {
		return err
	}

	c.GetConsole().Recipients(list)
	return nil
}
