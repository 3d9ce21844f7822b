package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/adportal/adportal/internal/auth"
	"github.com/adportal/adportal/internal/directory"
)

// the organizational units this deployment started with
var defaultDepartments = []string{
	"Accountant",
	"Administrative Affairs",
	"Camera",
	"Exhibit",
	"HR",
	"IT",
	"Audit",
	"Out Work",
	"Projects",
	"Sales",
	"Supplies",
	"Secretarial",
}

var seedSuperuserPassword string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the department catalog and the bootstrap superuser",
	Long:  `Inserts the default department catalog and, when --superuser-password is given, a local superuser that can log in while the directory is unreachable.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		db, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer db.Close()

		for _, name := range defaultDepartments {
			var exists int
			row := db.QueryRow("SELECT 1 FROM departments WHERE LOWER(name) = LOWER($1)", name)
			if err := row.Scan(&exists); err == nil {
				continue
			}
			if _, err := db.Exec("INSERT INTO departments (name, created_at) VALUES ($1, now())", name); err != nil {
				log.Fatalf("failed to insert department %s: %v", name, err)
			}
			fmt.Println("seeded department:", name)
		}

		if seedSuperuserPassword == "" {
			fmt.Println("no --superuser-password given, skipping bootstrap superuser")
			return
		}

		username := directory.NormalizeLogin("admin", cfg.Directory.Domain)
		hash, err := auth.HashPassword(seedSuperuserPassword, bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("failed to hash superuser password: %v", err)
		}

		var exists int
		row := db.QueryRow("SELECT 1 FROM users WHERE LOWER(username) = LOWER($1)", username)
		if err := row.Scan(&exists); err == nil {
			if _, err := db.Exec("UPDATE users SET password_hash = $1, is_active = true, is_staff = true, is_superuser = true WHERE LOWER(username) = LOWER($2)", hash, username); err != nil {
				log.Fatalf("failed to update superuser: %v", err)
			}
			fmt.Println("updated bootstrap superuser:", username)
			return
		}

		if _, err := db.Exec("INSERT INTO users (username, password_hash, is_active, is_staff, is_superuser, date_joined) VALUES ($1, $2, true, true, true, now())", username, hash); err != nil {
			log.Fatalf("failed to insert superuser: %v", err)
		}
		fmt.Println("seeded bootstrap superuser:", username)
	},
}
