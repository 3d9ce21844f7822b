package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/adportal/adportal/internal/directory"
	"github.com/adportal/adportal/pkg/logger"
)

// checkDirectoryCmd binds with the configured admin account and lists person
// entries, for verifying connectivity and the search base before rollout.
var checkDirectoryCmd = &cobra.Command{
	Use:   "check-directory",
	Short: "Verify directory connectivity with the configured admin account",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		if cfg.Directory.AdminUsername == "" || cfg.Directory.AdminPassword == "" {
			fmt.Fprintln(os.Stderr, "directory admin_username and admin_password must be configured")
			os.Exit(1)
		}

		logger.Init(os.Getenv("APP_ENV"))
		lg := logger.LoggerWrapper()

		login := directory.NormalizeLogin(cfg.Directory.AdminUsername, cfg.Directory.Domain)
		session, err := directory.Authenticate(directoryConfig(cfg.Directory), login, cfg.Directory.AdminPassword, lg)
		if err != nil {
			log.Fatalf("directory bind failed: %v", err)
		}
		defer session.Close()

		entries, err := session.SearchAll(directory.SyncAttributes)
		if err != nil {
			log.Fatalf("directory search failed: %v", err)
		}

		fmt.Printf("bound as %s, %d person entries under %s\n", login, len(entries), cfg.Directory.BaseDN)
		for _, entry := range entries {
			fmt.Printf("  %-20s %-30s ou=%s\n", entry.Login(), entry.DisplayName, entry.OU())
		}
	},
}
