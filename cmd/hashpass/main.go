// Command hashpass prints a bcrypt hash suitable for WIFE_PASSWORD_HASH or
// HUSBAND_PASSWORD_HASH.
package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gurkanbulca/grievanceportal/pkg/auth"
)

var cost int

func main() {
	rootCmd := &cobra.Command{
		Use:          "hashpass [password]",
		Short:        "Hash a portal password with bcrypt",
		Long:         "Hash a portal password with bcrypt. Reads the password from stdin when no argument is given.",
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE:         hashPassword,
	}
	rootCmd.Flags().IntVar(&cost, "cost", 0, "bcrypt cost (defaults to the portal's cost)")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func hashPassword(cmd *cobra.Command, args []string) error {
	var password string
	if len(args) == 1 {
		password = args[0]
	} else {
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && line == "" {
			return errors.New("no password given")
		}
		password = strings.TrimRight(line, "\r\n")
	}

	pm := auth.NewPasswordManager()
	if cost > 0 {
		pm = pm.WithCost(cost)
	}
	hash, err := pm.HashPassword(password)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), hash)
	return nil
}
