package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/protobuf/encoding/protojson"

	grpcserver "github.com/Billy-Davies-2/fantasy-draft-aid/internal/grpc"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the summary of a running server",
	Long: `Calls Summary on a running server over gRPC and prints it as JSON.

Example:
  draftaid status
  draftaid status --addr draftaid.internal:50051 --refresh`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

var (
	statusAddr    string
	statusRefresh bool
)

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().StringVar(&statusAddr, "addr", "", "gRPC address (default localhost:GRPC_PORT)")
	statusCmd.Flags().BoolVar(&statusRefresh, "refresh", false, "refresh the draft before reading the summary")
}

func runStatus(cmd *cobra.Command, args []string) error {
	addr := statusAddr
	if addr == "" {
		addr = "localhost:" + cfg.GRPCPort
	}

	client, err := grpcserver.Dial(addr)
	if err != nil {
		return err
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	if statusRefresh {
		if _, err := client.Refresh(ctx); err != nil {
			return err
		}
	}
	sum, err := client.Summary(ctx)
	if err != nil {
		return err
	}
	data, err := protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(sum)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}
