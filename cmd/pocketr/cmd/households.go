package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var householdCmd = &cobra.Command{
	Use:   "household",
	Short: "Manage households and shared accounts",
}

var householdCreateCmd = &cobra.Command{
	Use:   "create NAME",
	Short: "Create a household with yourself as owner",
	Args:  cobra.ExactArgs(1),
	Run:   runHouseholdCreate,
}

var householdInviteCmd = &cobra.Command{
	Use:   "invite HOUSEHOLD_ID EMAIL",
	Short: "Invite a registered user",
	Args:  cobra.ExactArgs(2),
	Run:   runHouseholdInvite,
}

var householdAcceptCmd = &cobra.Command{
	Use:   "accept HOUSEHOLD_ID",
	Short: "Accept a pending invite",
	Args:  cobra.ExactArgs(1),
	Run:   runHouseholdAccept,
}

var householdShareCmd = &cobra.Command{
	Use:   "share HOUSEHOLD_ID ACCOUNT_ID",
	Short: "Share one of your accounts into a household",
	Args:  cobra.ExactArgs(2),
	Run:   runHouseholdShare,
}

var householdUnshareCmd = &cobra.Command{
	Use:   "unshare HOUSEHOLD_ID ACCOUNT_ID",
	Short: "Stop sharing an account",
	Args:  cobra.ExactArgs(2),
	Run:   runHouseholdUnshare,
}

func init() {
	householdCmd.AddCommand(householdCreateCmd)
	householdCmd.AddCommand(householdInviteCmd)
	householdCmd.AddCommand(householdAcceptCmd)
	householdCmd.AddCommand(householdShareCmd)
	householdCmd.AddCommand(householdUnshareCmd)
}

func runHouseholdCreate(cmd *cobra.Command, args []string) {
	a := openApp()
	defer a.Close()

	household, err := a.ledger.CreateHousehold(a.ctx, a.actor(), args[0])
	exitOnError(err, "failed to create household")

	fmt.Printf("%s %s\n", household.ID, household.Name)
}

func runHouseholdInvite(cmd *cobra.Command, args []string) {
	a := openApp()
	defer a.Close()

	member, err := a.ledger.InviteMember(a.ctx, a.actor(), args[0], args[1])
	exitOnError(err, "failed to invite member")

	fmt.Printf("Invited %s as %s (%s)\n", args[1], member.Role, member.Status)
}

func runHouseholdAccept(cmd *cobra.Command, args []string) {
	a := openApp()
	defer a.Close()

	member, err := a.ledger.AcceptInvite(a.ctx, a.actor(), args[0])
	exitOnError(err, "failed to accept invite")

	fmt.Printf("Joined %s as %s\n", member.HouseholdID, member.Role)
}

func runHouseholdShare(cmd *cobra.Command, args []string) {
	a := openApp()
	defer a.Close()

	err := a.ledger.ShareAccount(a.ctx, a.actor(), args[0], args[1])
	exitOnError(err, "failed to share account")

	fmt.Printf("Shared %s into %s\n", args[1], args[0])
}

func runHouseholdUnshare(cmd *cobra.Command, args []string) {
	a := openApp()
	defer a.Close()

	err := a.ledger.UnshareAccount(a.ctx, a.actor(), args[0], args[1])
	exitOnError(err, "failed to unshare account")

	fmt.Printf("Unshared %s from %s\n", args[1], args[0])
}
