package commands

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"patternfs/internal/nfs"
)

var (
	serveSource   treeSource
	serveListen   string
	serveReadOnly bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Export a tree over NFSv3",
	Long: `Export a tree over NFSv3 until interrupted.

Changes made through the mount live in memory only; save them with a
snapshot from another tree source if needed.

Examples:
  patternfs serve --dir ~/projects/app --listen 127.0.0.1:2049
  patternfs serve --snapshot v1 --read-only`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := serveSource.load(cmd.Context())
		if err != nil {
			return err
		}

		listen := settings.NFS.Listen
		if cmd.Flags().Changed("listen") {
			listen = serveListen
		}

		srv := nfs.NewServer(nfs.NewTreeFS(root, nfs.Options{ReadOnly: serveReadOnly}))
		addr, err := srv.Start(listen)
		if err != nil {
			return err
		}
		defer srv.Shutdown()

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Serving %q on %s\n", root.Name(), addr)
		if tcp, ok := addr.(*net.TCPAddr); ok {
			fmt.Fprintf(out, "Mount with:\n  %s\n", nfs.MountCommand(tcp.IP.String(), tcp.Port, "/path/to/mountpoint"))
		}

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigCh)
		select {
		case <-sigCh:
		case <-cmd.Context().Done():
		}
		fmt.Fprintln(out, "Shutting down")
		return nil
	},
}

func init() {
	serveSource.register(serveCmd)
	serveCmd.Flags().StringVarP(&serveListen, "listen", "l", "", "Listen address (default from settings.yaml)")
	serveCmd.Flags().BoolVar(&serveReadOnly, "read-only", false, "Reject writes through the mount")
	rootCmd.AddCommand(serveCmd)
}
