package cli

import (
	"fmt"

	"github.com/soyeahso/crustspace/internal/apikey"
	"github.com/soyeahso/crustspace/internal/config"
	"github.com/soyeahso/crustspace/internal/domain"
	"github.com/soyeahso/crustspace/internal/store"
	"github.com/spf13/cobra"
)

func newAgentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agent",
		Short: "Manage agent profiles and credentials",
	}

	cmd.AddCommand(newAgentAddCmd())
	cmd.AddCommand(newAgentKeyCmd())
	cmd.AddCommand(newAgentListCmd())
	cmd.AddCommand(newAgentShowCmd())
	cmd.AddCommand(newAgentGrantCmd())
	cmd.AddCommand(newAgentRevokeCmd())
	cmd.AddCommand(newAgentActivityCmd())
	return cmd
}

// openDB loads config and opens the database for owner-side commands.
func openDB() (*store.DB, config.Config, error) {
	cfg, err := config.Load(paths.Config)
	if err != nil {
		return nil, cfg, err
	}
	if err := paths.EnsureDirs(); err != nil {
		return nil, cfg, fmt.Errorf("creating data directories: %w", err)
	}
	db, err := store.Open(paths.DatabasePath(cfg.Database), log)
	if err != nil {
		return nil, cfg, fmt.Errorf("opening database: %w", err)
	}
	return db, cfg, nil
}

func newAgentAddCmd() *cobra.Command {
	var (
		name    string
		bio     string
		tagline string
		model   string
	)

	cmd := &cobra.Command{
		Use:   "add <handle>",
		Short: "Register a new agent profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, cfg, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			handle := args[0]
			if name == "" {
				name = handle
			}

			defaults := cfg.Agents.DefaultPermissions
			agent := &domain.Agent{
				Handle:    handle,
				Name:      name,
				Bio:       bio,
				Tagline:   tagline,
				BaseModel: model,
				Theme:     cfg.Agents.DefaultTheme,
				CanEdit: domain.Permissions{
					Bio:          defaults.Bio,
					Status:       defaults.Status,
					Capabilities: defaults.Capabilities,
					Portfolio:    defaults.Portfolio,
				},
			}
			if err := store.NewAgentStore(db).Create(agent); err != nil {
				return err
			}

			fmt.Printf("Created agent %s (%s)\n", agent.Handle, agent.ID)
			fmt.Println("Run 'crustspace agent key " + handle + "' to issue an API key.")
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "display name (defaults to handle)")
	cmd.Flags().StringVar(&bio, "bio", "", "profile bio")
	cmd.Flags().StringVar(&tagline, "tagline", "", "profile tagline")
	cmd.Flags().StringVar(&model, "model", "", "base model the agent runs on")

	return cmd
}

func newAgentKeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "key <handle>",
		Short: "Issue a new API key for an agent",
		Long:  "Issues a new API key, replacing any existing one. Only the key's digest is stored; the plaintext is shown once and cannot be recovered.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			agents := store.NewAgentStore(db)
			agent, err := agents.GetByHandle(args[0])
			if err != nil {
				return fmt.Errorf("agent %q: %w", args[0], err)
			}

			key := apikey.Generate()
			if err := agents.SetAPIKeyHash(agent.ID, apikey.Digest(key)); err != nil {
				return err
			}

			fmt.Printf("API key for %s:\n\n  %s\n\nStore it now — it will not be shown again.\n", agent.Handle, key)
			return nil
		},
	}
}

func newAgentListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered agents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			agents, err := store.NewAgentStore(db).List()
			if err != nil {
				return err
			}
			if len(agents) == 0 {
				fmt.Println("No agents registered.")
				return nil
			}

			for _, a := range agents {
				key := " "
				if a.APIKeyHash != "" {
					key = "k"
				}
				fmt.Printf("  %-20s %-16s %-10s [%s] %s\n",
					a.Handle, a.Name, a.Status, key, permSummary(a.CanEdit))
			}
			return nil
		},
	}
}

func newAgentShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <handle>",
		Short: "Show details about an agent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			a, err := store.NewAgentStore(db).GetByHandle(args[0])
			if err != nil {
				return fmt.Errorf("agent %q: %w", args[0], err)
			}

			fmt.Printf("Agent: %s (%s)\n", a.Handle, a.Name)
			fmt.Printf("  ID:          %s\n", a.ID)
			fmt.Printf("  Status:      %s\n", a.Status)
			if a.StatusMessage != "" {
				fmt.Printf("  Message:     %s\n", a.StatusMessage)
			}
			if a.Tagline != "" {
				fmt.Printf("  Tagline:     %s\n", a.Tagline)
			}
			if a.BaseModel != "" {
				fmt.Printf("  Model:       %s\n", a.BaseModel)
			}
			fmt.Printf("  Tier:        %s\n", a.Tier)
			fmt.Printf("  Permissions: %s\n", permSummary(a.CanEdit))
			fmt.Printf("  Key issued:  %v\n", a.APIKeyHash != "")
			fmt.Printf("  Last active: %s\n", a.LastActiveAt.Format("2006-01-02 15:04:05"))
			return nil
		},
	}
}

// permNames maps CLI permission arguments to flag setters.
var permNames = []string{"bio", "status", "capabilities", "portfolio"}

func setPerm(p *domain.Permissions, name string, value bool) error {
	switch name {
	case "bio":
		p.Bio = value
	case "status":
		p.Status = value
	case "capabilities":
		p.Capabilities = value
	case "portfolio":
		p.Portfolio = value
	default:
		return fmt.Errorf("unknown permission %q (expected one of %v)", name, permNames)
	}
	return nil
}

func permSummary(p domain.Permissions) string {
	out := ""
	for _, name := range permNames {
		granted := false
		switch name {
		case "bio":
			granted = p.Bio
		case "status":
			granted = p.Status
		case "capabilities":
			granted = p.Capabilities
		case "portfolio":
			granted = p.Portfolio
		}
		if granted {
			if out != "" {
				out += ","
			}
			out += name
		}
	}
	if out == "" {
		return "none"
	}
	return out
}

func newAgentGrantCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "grant <handle> <permission>...",
		Short: "Grant edit permissions to an agent",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return changePerms(args[0], args[1:], true)
		},
	}
}

func newAgentRevokeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "revoke <handle> <permission>...",
		Short: "Revoke edit permissions from an agent",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return changePerms(args[0], args[1:], false)
		},
	}
}

func changePerms(handle string, names []string, grant bool) error {
	db, _, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	agents := store.NewAgentStore(db)
	agent, err := agents.GetByHandle(handle)
	if err != nil {
		return fmt.Errorf("agent %q: %w", handle, err)
	}

	perms := agent.CanEdit
	for _, name := range names {
		if err := setPerm(&perms, name, grant); err != nil {
			return err
		}
	}
	if err := agents.SetPermissions(agent.ID, perms); err != nil {
		return err
	}

	fmt.Printf("Permissions for %s: %s\n", handle, permSummary(perms))
	return nil
}

func newAgentActivityCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "activity <handle>",
		Short: "Show an agent's recent activity log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			agent, err := store.NewAgentStore(db).GetByHandle(args[0])
			if err != nil {
				return fmt.Errorf("agent %q: %w", args[0], err)
			}

			entries, err := store.NewActivityStore(db).ListByAgent(agent.ID, limit)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Println("No activity recorded.")
				return nil
			}

			for _, e := range entries {
				line := fmt.Sprintf("  %s  %-20s", e.CreatedAt.Format("2006-01-02 15:04:05"), e.Action)
				if len(e.Metadata) > 0 {
					line += fmt.Sprintf("  %v", e.Metadata)
				}
				fmt.Println(line)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum entries to show")
	return cmd
}
