/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"github.com/tomoncle/explorer"
	"github.com/tomoncle/explorer/config"
	"github.com/tomoncle/explorer/database"
	"github.com/tomoncle/explorer/utils"
)

type app struct {
	configPath string
	cfg        *config.Config
}

// RootCommand builds the explorer CLI.
func RootCommand() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "explorer",
		Short:         "Table explorer over MySQL, PostgreSQL and SQLite",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return err
			}
			utils.ConfigureConsoleLogFormat(cfg.Log.Format)
			utils.ConfigureLogLevel(cfg.Log.Level)
			a.cfg = cfg
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "path to a YAML config file")

	rootCmd.AddCommand(
		a.serveCommand(),
		a.initDataCommand(),
		a.countCommand(),
		a.todayCommand(),
	)
	return rootCmd
}

// open connects without running data initialization; init-data and serve
// decide on that themselves.
func (a *app) open(ctx context.Context) (database.AbstractDatabaseManager, error) {
	cfg := a.cfg.Database
	cfg.DataInitConfig.AutoInitOnStartup = false
	return database.Open(ctx, &cfg, nil)
}

func (a *app) serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			manager, err := database.Open(ctx, &a.cfg.Database, nil)
			if err != nil {
				return err
			}
			defer func() { _ = manager.Disconnect() }()

			logger := utils.NewLogger("WEB")
			e, err := explorer.NewWebServer(a.cfg.Web, explorer.NewFromManager(manager), logger)
			if err != nil {
				return err
			}

			errCh := make(chan error, 1)
			go func() {
				logger.Infof("Listening on %s", a.cfg.Web.Listen)
				errCh <- e.Start(a.cfg.Web.Listen)
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				logger.Info("Shutting down")
				return e.Shutdown(shutdownCtx)
			}
		},
	}
}

func (a *app) initDataCommand() *cobra.Command {
	var env string
	cmd := &cobra.Command{
		Use:   "init-data",
		Short: "Run the SQL initialization files",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			manager, err := a.open(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = manager.Disconnect() }()

			dataInit := a.cfg.Database.DataInitConfig
			if env != "" {
				dataInit.Environment = env
			}
			return manager.InitData(ctx, dataInit)
		},
	}
	cmd.Flags().StringVar(&env, "env", "", "environment directory to run after common/")
	return cmd
}

func (a *app) countCommand() *cobra.Command {
	var table string
	cmd := &cobra.Command{
		Use:   "count",
		Short: "Print the number of rows in a table",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			manager, err := a.open(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = manager.Disconnect() }()

			n, err := explorer.NewFromManager(manager).Repository(table).GetCount(ctx)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), n)
			return err
		},
	}
	cmd.Flags().StringVarP(&table, "table", "t", "", "table name")
	_ = cmd.MarkFlagRequired("table")
	return cmd
}

func (a *app) todayCommand() *cobra.Command {
	var table, column string
	cmd := &cobra.Command{
		Use:   "today",
		Short: "Print the rows of a table created today",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			manager, err := a.open(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = manager.Disconnect() }()

			sel := explorer.NewFromManager(manager).Repository(table).FindTodayRows(column)
			for row, err := range sel.All(ctx) {
				if err != nil {
					return err
				}
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), formatRow(row)); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&table, "table", "t", "", "table name")
	cmd.Flags().StringVar(&column, "column", "created_at", "timestamp column")
	_ = cmd.MarkFlagRequired("table")
	return cmd
}
