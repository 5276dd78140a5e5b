package localnode

import (
	"fmt"
	"log/slog"

	"github.com/raffle-network/raffle-deploy/configs"
	"github.com/raffle-network/raffle-deploy/internal/infra/docker"
	"github.com/spf13/cobra"
)

var CMD = &cobra.Command{
	Use:   "node",
	Short: "Commands for running a local development chain",
}

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start an anvil node matching the localhost network",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withNode(func(node *Node) error {
			if err := node.Start(cmd.Context()); err != nil {
				return fmt.Errorf("error occurred starting development node: %w", err)
			}
			slog.With("rpc_url", node.RPCURL()).Info("development node started")
			return nil
		})
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the development node and discard its chain state",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withNode(func(node *Node) error {
			return node.Stop(cmd.Context())
		})
	},
}

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Print the development node's output",
	RunE: func(cmd *cobra.Command, args []string) error {
		follow, err := cmd.Flags().GetBool("follow")
		if err != nil {
			return err
		}
		return withNode(func(node *Node) error {
			return node.Logs(cmd.Context(), follow, cmd.OutOrStdout(), cmd.ErrOrStderr())
		})
	},
}

func init() {
	logsCmd.Flags().BoolP("follow", "f", false, "Keep streaming new output")

	CMD.AddCommand(startCmd)
	CMD.AddCommand(stopCmd)
	CMD.AddCommand(logsCmd)
}

func withNode(fn func(node *Node) error) error {
	client, err := docker.New()
	if err != nil {
		return fmt.Errorf("failed to create docker client: %w", err)
	}
	defer client.Close()

	return fn(New(client, configs.Values.Node))
}
