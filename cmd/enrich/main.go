// Copyright 2025 coursedeck LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/coursedeck/enrich/pkg/augment"
	"github.com/coursedeck/enrich/pkg/config"
	"github.com/coursedeck/enrich/pkg/llm"
	"github.com/coursedeck/enrich/pkg/log"
)

var (
	// Flags
	configFile string
	localOnly  bool
	dryRun     bool
	only       string
	debug      bool
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "enrich [directory]",
		Short: "Fill in missing summaries and time estimates in course files",
		Long: `Enrich augments course description files with a short summary and a
time estimate for every item missing them. It will:
1. Enumerate the course files in the directory
2. Ask the completion service (or a local heuristic) for the missing fields
3. Back up each changed file and replace it atomically`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), args[0])
		},
	}

	cmd.Flags().StringVarP(&configFile, "config", "c", config.DefaultPath, "config file path")
	cmd.Flags().BoolVar(&localOnly, "local-only", false, "derive metadata heuristically, no remote calls")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report what would change without writing anything")
	cmd.Flags().StringVar(&only, "only", "", "process only the course file with this name stem")
	cmd.Flags().BoolVarP(&debug, "debug", "d", false, "enable debug logging")

	cmd.AddCommand(newVersionCmd())

	return cmd
}

func run(ctx context.Context, dir string) error {
	// Set up logging
	logLevel := zerolog.InfoLevel
	if debug {
		logLevel = zerolog.DebugLevel
	}
	logger := zerolog.New(os.Stderr).Level(logLevel).With().Timestamp().Logger()
	ctx = logger.WithContext(ctx)

	// Load config
	cfg, err := config.Load(ctx, configFile)
	if err != nil {
		return errors.Errorf("loading config: %w", err)
	}

	console := log.New(os.Stdout, logLevel)

	// The credential is resolved only when the remote path is actually
	// selected; local-only and dry-run runs never need a token.
	var completer augment.Completer
	if !localOnly && !dryRun {
		token, err := llm.ResolveToken()
		if err != nil {
			return err
		}
		client, err := llm.New(llm.Options{
			BaseURL:     cfg.Service.BaseURL,
			Token:       token,
			Model:       cfg.Service.Model,
			MaxTokens:   cfg.Service.MaxTokens,
			Temperature: cfg.Service.Temperature,
			MaxAttempts: cfg.Service.MaxAttempts,
		})
		if err != nil {
			return errors.Errorf("creating completion client: %w", err)
		}
		completer = client
	}

	a := augment.New(augment.Options{
		Completer: completer,
		LocalOnly: localOnly,
		DryRun:    dryRun,
		Patterns:  cfg.Files.Patterns,
		Ignore:    cfg.Files.Ignore,
		Console:   console,
	})

	console.Header(fmt.Sprintf("augmenting course files in %s", dir))

	summary, err := a.Run(ctx, dir, only)
	if err != nil {
		return errors.Errorf("running batch: %w", err)
	}

	// Item-level degradations never fail the run; file-level errors do.
	if summary.Failed > 0 {
		return errors.Errorf("%d of %d course files failed", summary.Failed, summary.Files)
	}

	return nil
}

func main() {
	cmd := newRootCmd()
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %s\n", err)
		os.Exit(1)
	}
}
