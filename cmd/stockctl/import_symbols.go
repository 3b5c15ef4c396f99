package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	redisv9 "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"stock_predictor/internal/app/di"
	"stock_predictor/internal/config"
	"stock_predictor/internal/feature/symbollist/usecase"
	infradb "stock_predictor/internal/platform/db"
	infraredis "stock_predictor/internal/platform/redis"
)

func importSymbolsCmd(configPath *string) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "import-symbols",
		Short: "Import the reference table (Code,Name CSV) into the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := *configPath
			if path == "" {
				path = os.Getenv("CONFIG_PATH")
			}
			cfg, err := config.Load(path)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := cfg.ValidateDatabase(); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}

			db, err := infradb.Open(infradb.Config{
				Driver:         cfg.Database.Driver,
				DSN:            cfg.Database.DSN,
				ConnectTimeout: cfg.Database.ConnectTimeout,
				AutoMigrate:    true,
			})
			if err != nil {
				return err
			}
			if sqlDB, err := db.DB(); err == nil {
				defer sqlDB.Close()
			}

			// Redisがあれば取り込み後にキャッシュを無効化する
			var rdb *redisv9.Client
			if cfg.RedisEnabled() {
				if tmp, err := infraredis.NewRedisClient(cmd.Context(), infraredis.Options{Addr: cfg.RedisAddr(), Password: cfg.Redis.Password}); err != nil {
					log.Println("[WARN] Redis unavailable. Cached symbols expire on their own.")
				} else {
					rdb = tmp
					defer rdb.Close()
				}
			}

			f, err := os.Open(file)
			if err != nil {
				return err
			}
			defer f.Close()

			return runImport(cmd.Context(), usecase.NewImportUsecase(di.NewSymbolStore(rdb, db, cfg.Cache.SymbolTTL)), f, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "reference table CSV with Code and Name columns")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

// symbolImporter is the part of ImportUsecase used by the command.
type symbolImporter interface {
	Import(ctx context.Context, r io.Reader) (*usecase.ImportResult, error)
}

func runImport(ctx context.Context, imp symbolImporter, r io.Reader, out io.Writer) error {
	res, err := imp.Import(ctx, r)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "read %d rows: %d inserted, %d duplicates, %d blank\n",
		res.Read, res.Inserted, res.Duplicates, res.Blank)
	return nil
}
