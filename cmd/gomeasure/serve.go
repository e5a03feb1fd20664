package main

import (
	"github.com/gin-gonic/gin"
	"github.com/philipparndt/gomeasure/internal/server"
	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve [file]",
	Short: "Serve the drawing and its labels over HTTP",
	Long: `Start the HTTP bridge. The REST API under /api drives the drawing and the
measurement control, and /ws/labels streams every label update as GeoJSON.
An optional GeoJSON file is loaded at startup.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config, :8080)")
}

func runServe(cmd *cobra.Command, args []string) error {
	var filename string
	if len(args) > 0 {
		filename = args[0]
	}

	a, err := openSession(filename, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	addr := settings.Server.Addr
	if cmd.Flags().Changed("addr") {
		addr = serveAddr
	}

	if settings.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := server.New(a.Control, a.Host, logger)

	ctx, stop := signalContext(cmd)
	defer stop()
	return srv.Run(ctx, addr)
}
