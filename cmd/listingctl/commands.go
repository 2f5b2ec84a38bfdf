package main

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iliyamo/property-listing/internal/bridge"
	"github.com/iliyamo/property-listing/internal/config"
	"github.com/iliyamo/property-listing/internal/database"
	"github.com/iliyamo/property-listing/internal/remote"
	"github.com/iliyamo/property-listing/internal/store"
)

// knownKeys are the keys the service persists.
var knownKeys = []string{
	bridge.KeyRentApartments,
	bridge.KeySaleApartments,
	bridge.KeyTheme,
	bridge.KeyCustomThemes,
	bridge.KeyAdminAccounts,
	bridge.KeyAdminToken,
	bridge.KeyMasterToken,
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "listingctl",
		Short:         "Inspect and maintain the persisted listing state",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("driver", "", "bridge driver (memory, sqlite, mysql, redis); defaults to BRIDGE_DRIVER")
	root.PersistentFlags().String("sqlite-path", "", "sqlite file; defaults to SQLITE_PATH")

	root.AddCommand(dumpCmd(), clearCmd(), syncCmd())
	return root
}

// openBridge builds a bridge from the environment, with flags taking
// precedence.  The returned func releases every resource it opened.
func openBridge(cmd *cobra.Command) (*bridge.Bridge, config.Config, func(), error) {
	cfg := config.LoadBridgeConfig()
	if v, _ := cmd.Flags().GetString("driver"); v != "" {
		cfg.BridgeDriver = v
	}
	if v, _ := cmd.Flags().GetString("sqlite-path"); v != "" {
		cfg.SQLitePath = v
	}

	ctx := cmd.Context()
	opts := bridge.Options{Driver: cfg.BridgeDriver, SQLitePath: cfg.SQLitePath, RedisPrefix: cfg.RedisPrefix}
	var db *sql.DB
	switch cfg.BridgeDriver {
	case bridge.DriverMySQL:
		var err error
		if db, err = database.Open(ctx, cfg); err != nil {
			return nil, cfg, nil, err
		}
		opts.DB = db
	case bridge.DriverRedis:
		opts.Redis = config.NewRedisClient()
		if opts.Redis == nil {
			return nil, cfg, nil, errors.New("redis is not reachable")
		}
	}

	backend, err := bridge.Open(ctx, opts)
	if err != nil {
		if db != nil {
			_ = db.Close()
		}
		return nil, cfg, nil, err
	}
	b := bridge.New(backend)
	release := func() {
		_ = b.Close()
		if db != nil {
			_ = db.Close()
		}
		if opts.Redis != nil {
			_ = opts.Redis.Close()
		}
	}
	return b, cfg, release, nil
}

func openStore(ctx context.Context, b *bridge.Bridge) (*store.Store, error) {
	st := store.New(b)
	if err := st.Init(ctx); err != nil {
		return nil, err
	}
	return st, nil
}

func dumpCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "dump <key>",
		Short:     "Print the JSON stored under a key",
		Args:      cobra.ExactArgs(1),
		ValidArgs: knownKeys,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, _, release, err := openBridge(cmd)
			if err != nil {
				return err
			}
			defer release()

			payload, found, err := b.Backend().Get(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to read %q: %v", args[0], err)
			}
			if !found {
				return fmt.Errorf("key %q is not set", args[0])
			}
			var out bytes.Buffer
			if err := json.Indent(&out, payload, "", "  "); err != nil {
				// not JSON: print it as stored
				out.Reset()
				out.Write(payload)
			}
			fmt.Fprintln(cmd.OutOrStdout(), out.String())
			return nil
		},
	}
}

func clearCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every rental and sale listing",
		RunE: func(cmd *cobra.Command, args []string) error {
			if yes, _ := cmd.Flags().GetBool("yes"); !yes {
				return errors.New("refusing to clear listings without --yes")
			}
			b, _, release, err := openBridge(cmd)
			if err != nil {
				return err
			}
			defer release()

			st, err := openStore(cmd.Context(), b)
			if err != nil {
				return err
			}
			before := st.State()
			if _, err := st.Dispatch(cmd.Context(), store.ClearAllData{}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "cleared %d apartments and %d sale apartments\n",
				len(before.Apartments), len(before.SaleApartments))
			return nil
		},
	}
	cmd.Flags().Bool("yes", false, "confirm the data reset")
	return cmd
}

func syncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Fetch listings from the upstream API into the persisted state",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, cfg, release, err := openBridge(cmd)
			if err != nil {
				return err
			}
			defer release()

			url, _ := cmd.Flags().GetString("remote")
			if url == "" {
				url = cfg.RemoteAPIURL
			}
			if url == "" {
				return errors.New("no upstream configured: set REMOTE_API_URL or --remote")
			}
			only, _ := cmd.Flags().GetString("only")
			if only != "" && only != "rent" && only != "sale" {
				return fmt.Errorf("--only must be rent or sale, got %q", only)
			}

			st, err := openStore(cmd.Context(), b)
			if err != nil {
				return err
			}
			client := remote.NewClient(url)
			if only != "sale" {
				n, err := remote.SyncRent(cmd.Context(), st, client)
				if err != nil {
					return fmt.Errorf("rent sync failed: %v", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "synced %d rental apartments\n", n)
			}
			if only != "rent" {
				n, err := remote.SyncSale(cmd.Context(), st, client)
				if err != nil {
					return fmt.Errorf("sale sync failed: %v", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "synced %d sale apartments\n", n)
			}
			return nil
		},
	}
	cmd.Flags().String("remote", "", "upstream API base url; defaults to REMOTE_API_URL")
	cmd.Flags().String("only", "", "sync only rent or sale")
	return cmd
}
