package cmd

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/lexai-app/lexai/internal/api"
	"github.com/lexai-app/lexai/internal/errors"
	"github.com/lexai-app/lexai/internal/store"
	"github.com/lexai-app/lexai/internal/util"
	"github.com/spf13/cobra"
)

func newChatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Ask the legal assistant and browse past conversations",
	}
	cmd.AddCommand(newChatSendCmd(), newChatHistoryCmd(), newChatShowCmd())
	return cmd
}

// selectedCategory returns the category stored by the categories screen or
// command, or "" when none was chosen.
func selectedCategory(ctx context.Context, a *app) string {
	v, err := a.store.Get(ctx, store.KeySelectedCategory)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			a.logger.Warn("failed to read selected category", "error", err.Error())
		}
		return ""
	}
	return v
}

func newChatSendCmd() *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "send <message>",
		Short: "Send one question to the assistant",
		Long: `Send one question to the assistant and print the reply.

The category defaults to the one last selected with 'lexai categories --select'
or in the interface.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			message := strings.TrimSpace(strings.Join(args, " "))
			if message == "" {
				return errors.NewValidationError("message", "el mensaje está vacío")
			}

			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.requireSession(); err != nil {
				return err
			}

			if !cmd.Flags().Changed("category") {
				category = selectedCategory(cmd.Context(), a)
			}
			reply, err := a.client.SendMessage(cmd.Context(), api.ChatRequest{Message: message, Category: category})
			if err != nil {
				return backendError("failed to send message", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, reply.Response)
			if reply.ConversationID != "" {
				fmt.Fprintf(out, "\n(conversation %s, %s)\n", reply.ConversationID, util.CategoryLabel(category))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "legal category id (empty for a general question)")
	return cmd
}

func newChatHistoryCmd() *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past conversations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.requireSession(); err != nil {
				return err
			}

			convs, err := a.client.ChatHistory(cmd.Context())
			if err != nil {
				return backendError("failed to load chat history", err)
			}
			if category != "" {
				convs = slices.DeleteFunc(convs, func(c api.Conversation) bool { return c.Category != category })
			}

			out := cmd.OutOrStdout()
			if len(convs) == 0 {
				fmt.Fprintln(out, "No conversations")
				return nil
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tCATEGORY\tDATE\tMESSAGES\tFIRST MESSAGE")
			for _, c := range convs {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n",
					c.ID, util.CategoryLabel(c.Category), c.CreatedAt.DateString(), len(c.Messages), util.Preview(c.FirstMessage(), 50))
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "only conversations in this category")
	return cmd
}

func newChatShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print a conversation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.requireSession(); err != nil {
				return err
			}

			conv, err := a.client.GetConversation(cmd.Context(), args[0])
			if errors.Is(err, errors.ErrNotFound) {
				return fmt.Errorf("conversation %s not found", args[0])
			}
			if err != nil {
				return backendError("failed to load conversation", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s · %s\n", util.CategoryLabel(conv.Category), conv.CreatedAt.DateString())
			for _, m := range conv.Messages {
				who := "LexAI"
				if m.Type == api.MessageUser {
					who = "Tú"
				}
				fmt.Fprintf(out, "\n[%s] %s:\n%s\n", m.Timestamp.ClockString(), who, m.Content)
			}
			return nil
		},
	}
}

func newCategoriesCmd() *cobra.Command {
	var selectID string

	cmd := &cobra.Command{
		Use:   "categories",
		Short: "List legal categories or select one for chat",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.requireSession(); err != nil {
				return err
			}

			cats, err := a.client.LegalCategories(cmd.Context())
			if err != nil {
				return backendError("failed to load categories", err)
			}

			out := cmd.OutOrStdout()
			if selectID != "" {
				if !slices.ContainsFunc(cats, func(c api.Category) bool { return c.ID == selectID }) {
					return fmt.Errorf("unknown category %q", selectID)
				}
				if err := a.store.Set(cmd.Context(), store.KeySelectedCategory, selectID); err != nil {
					a.logger.Error("failed to persist selected category", "category", selectID, "error", err.Error())
					return fmt.Errorf("failed to save category: %w", err)
				}
				fmt.Fprintf(out, "Selected %s\n", util.CategoryLabel(selectID))
				return nil
			}

			current := selectedCategory(cmd.Context(), a)
			for _, c := range cats {
				mark := " "
				if c.ID == current {
					mark = "*"
				}
				fmt.Fprintf(out, "%s %s %-16s %s\n", mark, c.Icon, c.ID, c.Description)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&selectID, "select", "", "remember this category for chat")
	return cmd
}
