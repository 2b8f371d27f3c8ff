package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"clinic-assistant/internal/models"
	"clinic-assistant/internal/repository"
	"clinic-assistant/internal/service"

	"github.com/spf13/cobra"
)

func classifyCmd() *cobra.Command {
	var (
		sessionID string
		patientID int64
		noLog     bool
	)

	cmd := &cobra.Command{
		Use:   "classify <message>",
		Short: "Run a message through the assistant and print the result",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := connect(ctx)
			if err != nil {
				return err
			}
			defer e.Close()

			var conversations service.ConversationStore = repository.NewConversationRepository(e.db, e.logger)
			if noLog {
				conversations = discardConversations{}
			}

			var patient *int64
			if patientID > 0 {
				patient = &patientID
			}

			chat := service.NewChatService(e.restrictions, e.scopes, conversations, &e.cfg.Chat, e.logger)
			result := chat.ProcessMessage(ctx, strings.Join(args, " "), sessionID, patient)
			return writeJSON(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().StringVar(&sessionID, "session", "", "session id (generated when empty)")
	cmd.Flags().Int64Var(&patientID, "patient", 0, "classify as this logged-in patient id")
	cmd.Flags().BoolVar(&noLog, "no-log", false, "do not write the exchange to the conversation log")
	return cmd
}

func rulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Inspect scope and restriction rules",
	}

	var kind string
	list := &cobra.Command{
		Use:   "list",
		Short: "List all rules, including inactive ones",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := connect(ctx)
			if err != nil {
				return err
			}
			defer e.Close()

			return listRules(ctx, cmd.OutOrStdout(), kind, e.scopes, e.restrictions)
		},
	}
	list.Flags().StringVar(&kind, "kind", "scope", "rule kind: scope or restriction")

	cmd.AddCommand(list)
	return cmd
}

func cacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the Redis rule cache",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "invalidate",
		Short: "Drop cached rule sets so the next message reloads them",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := connect(ctx)
			if err != nil {
				return err
			}
			defer e.Close()

			rules, closeFn := e.ruleCache(ctx)
			defer closeFn()
			if rules == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "rule cache is not configured")
				return nil
			}
			if err := rules.Invalidate(ctx); err != nil {
				return fmt.Errorf("failed to invalidate rule cache: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "rule cache invalidated")
			return nil
		},
	})
	return cmd
}

type scopeLister interface {
	ListAll(ctx context.Context) ([]*models.ScopeRule, error)
}

type restrictionLister interface {
	ListAll(ctx context.Context) ([]*models.RestrictionRule, error)
}

func listRules(ctx context.Context, w io.Writer, kind string, scopes scopeLister, restrictions restrictionLister) error {
	switch kind {
	case "scope":
		rules, err := scopes.ListAll(ctx)
		if err != nil {
			return fmt.Errorf("failed to list scope rules: %w", err)
		}
		for _, r := range rules {
			fmt.Fprintf(w, "%d\t%s\t%s\tpriority=%d\tlogin=%t\tactive=%t\t%s\n",
				r.ID, r.Category, r.Topic, r.Priority, r.RequiresLogin, r.IsActive, strings.Join(r.Keywords, ","))
		}
	case "restriction":
		rules, err := restrictions.ListAll(ctx)
		if err != nil {
			return fmt.Errorf("failed to list restriction rules: %w", err)
		}
		for _, r := range rules {
			fmt.Fprintf(w, "%d\t%s\tseverity=%d\tactive=%t\t%s\n",
				r.ID, r.TopicName, r.Severity, r.IsActive, strings.Join(r.Keywords, ","))
		}
	default:
		return fmt.Errorf("unknown rule kind %q, want scope or restriction", kind)
	}
	return nil
}

var errLoggingDisabled = errors.New("logging disabled")

// discardConversations drops every entry, so results carry no log id.
type discardConversations struct{}

func (discardConversations) Append(ctx context.Context, entry *models.ConversationLog) (int64, error) {
	return 0, errLoggingDisabled
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
