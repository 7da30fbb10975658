package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kevinraymond/homeschool/internal/problemgen"
	"github.com/kevinraymond/homeschool/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the curriculum, problem generator and tutor over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			e.cfg.Server.Addr = addr
		}
		if err := e.cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		ctx := cmd.Context()
		catalog, err := e.catalog()
		if err != nil {
			return err
		}
		if err := catalog.Validate(); err != nil {
			return err
		}
		e.log.Info("curriculum loaded", "dir", e.cfg.Curriculum.Dir, "lessons", len(catalog.Lessons()))

		deps := server.Deps{
			Catalog:   catalog,
			Generator: problemgen.NewGenerator(nil),
			Students:  e.store.StudentRepo(),
			Progress:  e.store.ProgressRepo(),
			DB:        e.store.DB(),
			Logger:    e.log,
		}

		// The API stays up without AI; those endpoints answer 503.
		if t, err := e.tutor(ctx); err != nil {
			e.log.Warn("tutor unavailable", "error", err)
		} else {
			deps.Tutor = t
		}
		if g, err := e.llmGenerator(ctx); err != nil {
			e.log.Warn("topic problem generation unavailable", "error", err)
		} else {
			deps.LLMGenerator = g
		}

		srv := server.New(deps, server.Options{
			Addr:           e.cfg.Server.Addr,
			Mode:           e.cfg.Server.Mode,
			AllowedOrigins: e.cfg.Server.AllowedOrigins,
			ReadTimeout:    e.cfg.Server.ReadTimeout,
			WriteTimeout:   e.cfg.Server.WriteTimeout,
		})
		return srv.Run(ctx)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides server.addr)")
}
