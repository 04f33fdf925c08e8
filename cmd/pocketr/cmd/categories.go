package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var categoryColor string

var categoryCmd = &cobra.Command{
	Use:   "category",
	Short: "Manage category tags",
}

var categoryCreateCmd = &cobra.Command{
	Use:   "create NAME",
	Short: "Create a category tag",
	Args:  cobra.ExactArgs(1),
	Run:   runCategoryCreate,
}

var categoryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List category tags",
	Args:  cobra.NoArgs,
	Run:   runCategoryList,
}

var categoryRenameCmd = &cobra.Command{
	Use:   "rename CATEGORY_ID NAME",
	Short: "Rename a category tag or change its color",
	Args:  cobra.ExactArgs(2),
	Run:   runCategoryRename,
}

var categoryDeleteCmd = &cobra.Command{
	Use:   "delete CATEGORY_ID",
	Short: "Delete an unused category tag",
	Args:  cobra.ExactArgs(1),
	Run:   runCategoryDelete,
}

func init() {
	categoryCreateCmd.Flags().StringVar(&categoryColor, "color", "", "Display color, e.g. #22aa66")
	categoryRenameCmd.Flags().StringVar(&categoryColor, "color", "", "Display color, e.g. #22aa66")

	categoryCmd.AddCommand(categoryCreateCmd)
	categoryCmd.AddCommand(categoryListCmd)
	categoryCmd.AddCommand(categoryRenameCmd)
	categoryCmd.AddCommand(categoryDeleteCmd)
}

func runCategoryCreate(cmd *cobra.Command, args []string) {
	a := openApp()
	defer a.Close()

	tag, err := a.ledger.CreateCategory(a.ctx, a.actor(), args[0], categoryColor)
	exitOnError(err, "failed to create category")

	fmt.Printf("%s %s\n", tag.ID, tag.Name)
}

func runCategoryList(cmd *cobra.Command, args []string) {
	a := openApp()
	defer a.Close()

	tags, err := a.ledger.ListCategories(a.ctx, a.actor())
	exitOnError(err, "failed to list categories")

	for _, tag := range tags {
		fmt.Printf("%s  %-20s %s\n", tag.ID, tag.Name, tag.Color)
	}
}

func runCategoryRename(cmd *cobra.Command, args []string) {
	a := openApp()
	defer a.Close()

	tag, err := a.ledger.UpdateCategory(a.ctx, a.actor(), args[0], args[1], categoryColor)
	exitOnError(err, "failed to update category")

	fmt.Printf("%s %s\n", tag.ID, tag.Name)
}

func runCategoryDelete(cmd *cobra.Command, args []string) {
	a := openApp()
	defer a.Close()

	err := a.ledger.DeleteCategory(a.ctx, a.actor(), args[0])
	exitOnError(err, "failed to delete category")

	fmt.Println("Deleted", args[0])
}
