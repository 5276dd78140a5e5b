package localnode

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/raffle-network/raffle-deploy/configs"
	"github.com/raffle-network/raffle-deploy/internal/chain"
	"github.com/raffle-network/raffle-deploy/internal/infra/docker"
	"github.com/raffle-network/raffle-deploy/internal/logger"
)

const (
	anvilPort = 8545

	rpcAttempts = 30
	rpcInterval = time.Second
)

type (
	dockerClient interface {
		ImageExists(ctx context.Context, imageName string) (bool, error)
		PullImage(ctx context.Context, imageName string) error
		ContainerRunning(ctx context.Context, name string) (bool, error)
		RunDetached(ctx context.Context, opts docker.ContainerOptions) (string, error)
		RemoveContainer(ctx context.Context, name string) error
		StreamLogs(ctx context.Context, name string, follow bool, stdout, stderr io.Writer) error
	}

	// Node runs an anvil development chain in a Docker container.
	Node struct {
		docker     dockerClient
		cfg        configs.Node
		waitForRPC func(ctx context.Context, url string) error
		logger     *slog.Logger
	}
)

func New(docker dockerClient, cfg configs.Node) *Node {
	return &Node{
		docker: docker,
		cfg:    cfg,
		waitForRPC: func(ctx context.Context, url string) error {
			return chain.WaitForRPC(ctx, url, rpcAttempts, rpcInterval)
		},
		logger: logger.Named("local_node"),
	}
}

// RPCURL is the host-side endpoint of the node.
func (n *Node) RPCURL() string {
	return fmt.Sprintf("http://127.0.0.1:%d", n.cfg.Port)
}

// Start launches the node unless it is already running and waits until it serves RPC.
func (n *Node) Start(ctx context.Context) error {
	log := n.logger.With("container", n.cfg.ContainerName).With("chain_id", n.cfg.ChainID)

	running, err := n.docker.ContainerRunning(ctx, n.cfg.ContainerName)
	if err != nil {
		return err
	}
	if running {
		log.Info("development node already running")
		return n.waitForRPC(ctx, n.RPCURL())
	}

	exists, err := n.docker.ImageExists(ctx, n.cfg.Image)
	if err != nil {
		return fmt.Errorf("failed to check image %s: %w", n.cfg.Image, err)
	}
	if !exists {
		if err := n.docker.PullImage(ctx, n.cfg.Image); err != nil {
			return err
		}
	}

	// A stopped container with the same name blocks creation.
	if err := n.docker.RemoveContainer(ctx, n.cfg.ContainerName); err != nil {
		return err
	}

	if _, err := n.docker.RunDetached(ctx, docker.ContainerOptions{
		Name:       n.cfg.ContainerName,
		Image:      n.cfg.Image,
		Entrypoint: []string{"anvil"},
		Cmd:        n.anvilArgs(),
		Ports:      map[int]int{anvilPort: n.cfg.Port},
		HostIP:     "127.0.0.1",
	}); err != nil {
		return fmt.Errorf("failed to start development node: %w", err)
	}

	if err := n.waitForRPC(ctx, n.RPCURL()); err != nil {
		return fmt.Errorf("development node did not come up: %w", err)
	}

	log.With("rpc_url", n.RPCURL()).Info("development node ready")
	return nil
}

// Stop removes the node container and with it the chain state.
func (n *Node) Stop(ctx context.Context) error {
	if err := n.docker.RemoveContainer(ctx, n.cfg.ContainerName); err != nil {
		return err
	}

	n.logger.With("container", n.cfg.ContainerName).Info("development node stopped")
	return nil
}

func (n *Node) Logs(ctx context.Context, follow bool, stdout, stderr io.Writer) error {
	return n.docker.StreamLogs(ctx, n.cfg.ContainerName, follow, stdout, stderr)
}

func (n *Node) anvilArgs() []string {
	args := []string{
		"--host", "0.0.0.0",
		"--port", strconv.Itoa(anvilPort),
		"--chain-id", strconv.FormatInt(n.cfg.ChainID, 10),
	}
	if n.cfg.BlockTime > 0 {
		args = append(args, "--block-time", strconv.Itoa(n.cfg.BlockTime))
	}

	return args
}
