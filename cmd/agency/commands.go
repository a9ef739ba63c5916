package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/dawntoweb/agency/internal/config"
	"github.com/dawntoweb/agency/internal/seed"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the initial admin user and optional demo content",
	Long: `Create the initial admin user and optional demo content.

Seeding is best effort: each record is inserted independently, so a failure
partway leaves earlier records in place. Counts are printed either way.

Examples:
  agency seed --admin-password s3cret
  agency seed --admin-user admin --admin-password s3cret --demo`,
	RunE: func(cmd *cobra.Command, args []string) error {
		username, _ := cmd.Flags().GetString("admin-user")
		password, _ := cmd.Flags().GetString("admin-password")
		email, _ := cmd.Flags().GetString("admin-email")
		demo, _ := cmd.Flags().GetBool("demo")

		if password == "" {
			return fmt.Errorf("--admin-password is required")
		}

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		st, err := openStore(cfg.Storage)
		if err != nil {
			return fmt.Errorf("opening storage: %w", err)
		}
		defer st.Close()

		res, err := seed.Run(st, seed.Options{
			AdminUsername: username,
			AdminPassword: password,
			AdminEmail:    email,
			Demo:          demo,
		})

		printStatus("Users", "%d created", res.Users)
		if demo {
			printStatus("Projects", "%d created", res.Projects)
			printStatus("Agents", "%d created", res.Agents)
			printStatus("Posts", "%d created", res.Posts)
			printStatus("Settings", "%d created", res.Settings)
		}
		if err != nil {
			printError("seeding incomplete: %v", err)
			return err
		}
		printSuccess("Seeding complete")
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show backend status",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		base := fmt.Sprintf("http://%s", cfg.Server.Addr())
		client := &http.Client{Timeout: 2 * time.Second}

		resp, err := client.Get(base + "/health")
		if err != nil {
			printStatus("Server", "stopped")
			return nil
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			printStatus("Server", "error (HTTP %d)", resp.StatusCode)
			return nil
		}
		printStatus("Server", "running at %s", base)

		for _, ep := range []struct{ label, path string }{
			{"Published posts", "/api/blog-posts"},
			{"Active projects", "/api/projects"},
			{"Active agents", "/api/agents"},
		} {
			r, err := client.Get(base + ep.path)
			if err != nil {
				continue
			}
			var items []json.RawMessage
			if json.NewDecoder(r.Body).Decode(&items) == nil {
				printStatus(ep.label, "%d", len(items))
			}
			r.Body.Close()
		}

		printStatus("Storage", "%s (%s)", cfg.Storage.Driver, cfg.Storage.DataDir)
		return nil
	},
}

func init() {
	seedCmd.Flags().String("admin-user", "admin", "admin username")
	seedCmd.Flags().String("admin-password", "", "admin password (required)")
	seedCmd.Flags().String("admin-email", "admin@dawntoweb.com", "admin email")
	seedCmd.Flags().Bool("demo", false, "also create demo site content")
}
