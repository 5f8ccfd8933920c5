package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/poi-xref/internal/config"
	"github.com/poi-xref/internal/db"
	"github.com/poi-xref/internal/fuzz"
	"github.com/poi-xref/internal/normalize"
)

func createNormalizeCmd() *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "normalize [text...]",
		Short: "Print the cleaned form of names or addresses (reads stdin without args)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadMatchConfig()
			if err != nil {
				return err
			}

			var n *normalize.Normalizer
			switch kind {
			case "name":
				n = normalize.NewNameNormalizer(cfg.NonPrimaryTokens)
			case "address":
				n = normalize.NewAddressNormalizer()
			default:
				return fmt.Errorf("unknown kind %q, use name or address", kind)
			}

			emit := func(text string) {
				clean := n.Clean(text)
				if kind == "name" {
					fmt.Printf("%s\t%s\t%s\n", text, clean, n.Primary(clean))
				} else {
					fmt.Printf("%s\t%s\n", text, clean)
				}
			}

			if len(args) > 0 {
				for _, a := range args {
					emit(a)
				}
				return nil
			}

			scanner := bufio.NewScanner(os.Stdin)
			for scanner.Scan() {
				emit(scanner.Text())
			}
			return scanner.Err()
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "name", "Text kind: name or address")
	return cmd
}

func createScoreCmd() *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "score [a] [b]",
		Short: "Show every fuzzy ratio for a pair of names",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadMatchConfig()
			if err != nil {
				return err
			}

			a, b := args[0], args[1]
			if !raw {
				n := normalize.NewNameNormalizer(cfg.NonPrimaryTokens)
				a, b = n.Key(&a), n.Key(&b)
			}
			fmt.Printf("A: %q\nB: %q\n", a, b)
			if a == "" || b == "" {
				fmt.Println("No usable name, match not attempted")
				return nil
			}

			bd := fuzz.Combined(a, b)
			fmt.Printf("WRatio:           %6.2f\n", bd.WRatio)
			fmt.Printf("Partial ratio:    %6.2f\n", bd.Partial)
			fmt.Printf("Token sort ratio: %6.2f\n", bd.TokenSort)
			fmt.Printf("Token set ratio:  %6.2f\n", bd.TokenSet)
			fmt.Printf("Score:            %6.2f (threshold %.0f: %s)\n", bd.Max, cfg.NameThreshold, verdict(bd.Max >= cfg.NameThreshold))
			return nil
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "Compare the texts without normalizing")
	return cmd
}

func verdict(ok bool) string {
	if ok {
		return "match"
	}
	return "no match"
}

// createPingCmd creates a command to test database connectivity
func createPingCmd() *cobra.Command {
	var driver, dsn, table string

	cmd := &cobra.Command{
		Use:   "ping",
		Short: "Test database connectivity for SQL inputs",
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				conn *db.Connection
				err  error
			)
			if dsn == "" {
				conn, err = db.NewConnection()
			} else {
				conn, err = db.Open(driver, dsn)
			}
			if err != nil {
				return err
			}
			defer conn.Close()

			fmt.Printf("Database connection successful (%s)\n", conn.Driver)

			if table != "" {
				var count int
				query := fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteIdent(table))
				if err := conn.DB.QueryRowContext(cmd.Context(), query).Scan(&count); err != nil {
					return fmt.Errorf("failed to count %s: %w", table, err)
				}
				fmt.Printf("Rows in %s: %d\n", table, count)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&driver, "db-driver", config.GetEnv("POI_DB_DRIVER", db.DriverPostgres), "SQL driver: postgres or sqlite")
	cmd.Flags().StringVar(&dsn, "dsn", config.GetEnv("POI_DB_DSN", ""), "SQL data source name")
	cmd.Flags().StringVar(&table, "table", "", "Count rows in this table")
	return cmd
}

func quoteIdent(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = `"` + strings.ReplaceAll(p, `"`, `""`) + `"`
	}
	return strings.Join(parts, ".")
}
