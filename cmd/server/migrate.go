package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"token-minter/internal/logger"
	"token-minter/internal/storage/migrations"
	pgstore "token-minter/internal/storage/postgres"
)

var (
	migratePostgres   bool
	migrateClickHouse bool
)

func init() {
	migrateCmd.Flags().BoolVar(&migratePostgres, "postgres", true, "apply Postgres migrations")
	migrateCmd.Flags().BoolVar(&migrateClickHouse, "clickhouse", true, "apply ClickHouse migrations when a DSN is configured")
	RootCmd.AddCommand(migrateCmd)
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the embedded database migrations",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		log := logger.NewSublogger("migrate")

		if migratePostgres {
			if conf.Database.URL == "" {
				return errors.New("database url is not set")
			}

			pingCtx, cancelPing := context.WithTimeout(ctx, conf.Database.PingTimeout)
			pool, err := pgstore.NewPoolWithKey(pingCtx, conf.Database.URL, conf.Database.Key)
			cancelPing()
			if err != nil {
				return err
			}
			defer pool.Close()

			applied, err := migrations.RunPostgresMigrations(ctx, pool)
			if err != nil {
				return err
			}
			log.WithField("applied", applied).Info("Postgres migrated")
		}

		if migrateClickHouse && conf.ClickHouse.DSN != "" {
			conn, err := migrations.RunClickhouseMigrations(ctx, conf.ClickHouse.DSN)
			if err != nil {
				return err
			}
			defer conn.Close()
			log.Info("ClickHouse migrated")
		}
		return nil
	},
}
